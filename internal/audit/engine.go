// Package audit implements the compliance audit engine: load a city's stored
// readings for a date range, gate on completeness, aggregate by ISO week, and
// persist an immutable audit record. The engine never reaches out to the
// weather provider; audits are verdicts over data already ingested.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"weather-audit/internal/domain"
	"weather-audit/internal/observability"
	"weather-audit/internal/store"
)

// Engine evaluates and stores compliance audits.
type Engine struct {
	weather store.WeatherStore
	audits  store.AuditStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an audit engine over the given stores.
func NewEngine(weather store.WeatherStore, audits store.AuditStore, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		weather: weather,
		audits:  audits,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateAudit evaluates the city's readings in [dateFrom, dateTo] against the
// threshold and persists the resulting audit. It fails with *NoDataError when
// the range holds no readings and *IncompleteDataError when any day is
// missing; both carry the exact ingestion call that would fill the gap.
func (e *Engine) CreateAudit(ctx context.Context, city, countryCode string, dateFrom, dateTo domain.Date, thresholdTemp float64) (*domain.Audit, error) {
	start := time.Now()
	audit, err := e.createAudit(ctx, city, countryCode, dateFrom, dateTo, thresholdTemp)
	e.metrics.AuditEvaluationDuration.Observe(time.Since(start).Seconds())
	e.metrics.AuditsCreated.WithLabelValues(outcomeOf(err)).Inc()
	return audit, err
}

func (e *Engine) createAudit(ctx context.Context, city, countryCode string, dateFrom, dateTo domain.Date, thresholdTemp float64) (*domain.Audit, error) {
	readings, err := e.weather.FindRange(ctx, city, countryCode, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("load readings for %s, %s: %w", city, countryCode, err)
	}

	if len(readings) == 0 {
		return nil, &domain.NoDataError{
			City:        city,
			CountryCode: countryCode,
			DateFrom:    dateFrom,
			DateTo:      dateTo,
			Remediation: domain.RemediationFor(city, countryCode, dateFrom),
		}
	}

	// The range is inclusive on both ends, so a complete range holds exactly
	// one reading per calendar day.
	expected := dateFrom.DaysUntil(dateTo) + 1
	if len(readings) < expected {
		return nil, &domain.IncompleteDataError{
			City:        city,
			CountryCode: countryCode,
			Found:       len(readings),
			Expected:    expected,
			Missing:     expected - len(readings),
			Remediation: domain.RemediationFor(city, countryCode, dateFrom),
		}
	}

	evidences := domain.BuildWeeklyEvidence(readings, thresholdTemp)
	metadata, compliant := domain.SummarizeCompliance(evidences, thresholdTemp)
	e.metrics.AuditWeeksEvaluated.Observe(float64(len(evidences)))

	audit := &domain.Audit{
		AuditID:       uuid.NewString(),
		City:          city,
		CountryCode:   countryCode,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		ThresholdTemp: thresholdTemp,
		Compliant:     compliant,
		CreatedAt:     domain.Now(),
		Metadata:      metadata,
		Evidences:     evidences,
	}

	if err := e.audits.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("persist audit: %w", err)
	}

	e.logger.Info("audit created",
		"audit_id", audit.AuditID,
		"city", city,
		"country_code", countryCode,
		"date_from", dateFrom.String(),
		"date_to", dateTo.String(),
		"threshold_temp", thresholdTemp,
		"compliant", compliant,
		"total_weeks", metadata.TotalWeeks,
		"compliance_rate", metadata.ComplianceRate,
	)
	return audit, nil
}

// GetByAuditID returns a stored audit or store.ErrNotFound.
func (e *Engine) GetByAuditID(ctx context.Context, auditID string) (*domain.Audit, error) {
	return e.audits.FindByAuditID(ctx, auditID)
}

// List returns stored audits ordered by creation time.
func (e *Engine) List(ctx context.Context, opts store.ListOptions) ([]domain.Audit, error) {
	return e.audits.FindAll(ctx, opts)
}

// ListByCity returns a city's audits ordered by creation time.
func (e *Engine) ListByCity(ctx context.Context, city, countryCode string, opts store.ListOptions) ([]domain.Audit, error) {
	return e.audits.FindByCity(ctx, city, countryCode, opts)
}

func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return "created"
	case *domain.NoDataError:
		return "no_data"
	case *domain.IncompleteDataError:
		return "incomplete_data"
	default:
		return "error"
	}
}
