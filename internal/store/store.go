// Package store defines the persistence contracts consumed by the ingestion
// pipeline and the audit engine. Implementations live in store/memory (tests,
// local development) and store/postgres (production).
package store

import (
	"context"
	"errors"

	"weather-audit/internal/domain"
)

// ErrNotFound is returned by point lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ListOptions controls pagination and ordering for audit listings.
type ListOptions struct {
	Limit   int
	Skip    int
	SortAsc bool // false orders by createdAt descending (the default)

	// DateFrom/DateTo optionally filter audits whose own DateFrom falls in
	// the window. Zero values disable the bound.
	DateFrom domain.Date
	DateTo   domain.Date
}

// WeatherStore persists daily readings. Implementations must enforce a
// uniqueness constraint on (city, countryCode, date); that constraint is the
// sole reconciliation mechanism for concurrent overlapping ingestions.
type WeatherStore interface {
	// FindExistingDates reports which of the given dates already hold a
	// reading for the city, keyed by the date's "YYYY-MM-DD" form. The input
	// may be arbitrarily large.
	FindExistingDates(ctx context.Context, city, countryCode string, dates []domain.Date) (map[string]struct{}, error)

	// InsertMany inserts readings best-effort: each record succeeds or fails
	// on its own, duplicates are skipped silently, and the count of records
	// actually inserted is returned alongside any per-record errors.
	InsertMany(ctx context.Context, readings []domain.Reading) (int, error)

	// FindRange returns the city's readings with date in [from, to],
	// ordered by date ascending.
	FindRange(ctx context.Context, city, countryCode string, from, to domain.Date) ([]domain.Reading, error)

	// FindByCityAndDate returns a single reading or ErrNotFound.
	FindByCityAndDate(ctx context.Context, city, countryCode string, date domain.Date) (domain.Reading, error)

	// FindDistinctCities lists every (city, countryCode) pair with readings.
	FindDistinctCities(ctx context.Context) ([]domain.CityCountry, error)
}

// AuditStore persists audit records append-only.
type AuditStore interface {
	Create(ctx context.Context, audit *domain.Audit) error

	// FindByAuditID returns the audit or ErrNotFound.
	FindByAuditID(ctx context.Context, auditID string) (*domain.Audit, error)

	FindAll(ctx context.Context, opts ListOptions) ([]domain.Audit, error)

	FindByCity(ctx context.Context, city, countryCode string, opts ListOptions) ([]domain.Audit, error)
}
