package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

// AuditStore persists audits in the audits table. Evidences are stored as a
// JSONB document since they are owned by exactly one audit and never queried
// independently.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a PostgreSQL-backed audit store.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Create(ctx context.Context, audit *domain.Audit) error {
	evidences, err := json.Marshal(audit.Evidences)
	if err != nil {
		return fmt.Errorf("marshal evidences: %w", err)
	}

	query := `
		INSERT INTO audits (
			audit_id, city, country_code, date_from, date_to,
			threshold_temp, compliant, created_at,
			total_weeks, weeks_compliant, weeks_non_compliant,
			compliance_rate, rule, evidences
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		audit.AuditID, audit.City, audit.CountryCode,
		audit.DateFrom.Time, audit.DateTo.Time,
		audit.ThresholdTemp, audit.Compliant, audit.CreatedAt,
		audit.Metadata.TotalWeeks, audit.Metadata.WeeksCompliant,
		audit.Metadata.WeeksNonCompliant, audit.Metadata.ComplianceRate,
		audit.Metadata.Rule, evidences,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

const auditColumns = `
	audit_id, city, country_code, date_from, date_to,
	threshold_temp, compliant, created_at,
	total_weeks, weeks_compliant, weeks_non_compliant,
	compliance_rate, rule, evidences
`

func (s *AuditStore) FindByAuditID(ctx context.Context, auditID string) (*domain.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits WHERE audit_id = $1`
	row := s.db.QueryRowContext(ctx, query, auditID)

	audit, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query audit: %w", err)
	}
	return audit, nil
}

func (s *AuditStore) FindAll(ctx context.Context, opts store.ListOptions) ([]domain.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits
		WHERE ($1::date IS NULL OR date_from >= $1)
		  AND ($2::date IS NULL OR date_from <= $2)
		ORDER BY created_at ` + sortDirection(opts) + `
		LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, nullDate(opts.DateFrom), nullDate(opts.DateTo), limitOf(opts), opts.Skip)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()

	return scanAudits(rows)
}

func (s *AuditStore) FindByCity(ctx context.Context, city, countryCode string, opts store.ListOptions) ([]domain.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits
		WHERE city = $1 AND country_code = $2
		  AND ($3::date IS NULL OR date_from >= $3)
		  AND ($4::date IS NULL OR date_from <= $4)
		ORDER BY created_at ` + sortDirection(opts) + `
		LIMIT $5 OFFSET $6`

	rows, err := s.db.QueryContext(ctx, query, city, countryCode,
		nullDate(opts.DateFrom), nullDate(opts.DateTo), limitOf(opts), opts.Skip)
	if err != nil {
		return nil, fmt.Errorf("query audits by city: %w", err)
	}
	defer rows.Close()

	return scanAudits(rows)
}

// sortDirection renders the ORDER BY direction from validated options; it
// never interpolates caller input.
func sortDirection(opts store.ListOptions) string {
	if opts.SortAsc {
		return "ASC"
	}
	return "DESC"
}

func nullDate(d domain.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func limitOf(opts store.ListOptions) int {
	if opts.Limit <= 0 {
		return 50
	}
	return opts.Limit
}

func scanAudit(row rowScanner) (*domain.Audit, error) {
	var (
		audit         domain.Audit
		dateFrom      time.Time
		dateTo        time.Time
		evidencesJSON []byte
	)
	err := row.Scan(
		&audit.AuditID, &audit.City, &audit.CountryCode, &dateFrom, &dateTo,
		&audit.ThresholdTemp, &audit.Compliant, &audit.CreatedAt,
		&audit.Metadata.TotalWeeks, &audit.Metadata.WeeksCompliant,
		&audit.Metadata.WeeksNonCompliant, &audit.Metadata.ComplianceRate,
		&audit.Metadata.Rule, &evidencesJSON,
	)
	if err != nil {
		return nil, err
	}

	audit.DateFrom = domain.DateOf(dateFrom)
	audit.DateTo = domain.DateOf(dateTo)
	if err := json.Unmarshal(evidencesJSON, &audit.Evidences); err != nil {
		return nil, fmt.Errorf("unmarshal evidences: %w", err)
	}
	return &audit, nil
}

func scanAudits(rows *sql.Rows) ([]domain.Audit, error) {
	var audits []domain.Audit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, *audit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audits: %w", err)
	}
	return audits, nil
}
