package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

// WeatherStore persists daily readings in the readings table.
type WeatherStore struct {
	db *sql.DB
}

// NewWeatherStore creates a PostgreSQL-backed weather store.
func NewWeatherStore(db *sql.DB) *WeatherStore {
	return &WeatherStore{db: db}
}

func (s *WeatherStore) FindExistingDates(ctx context.Context, city, countryCode string, dates []domain.Date) (map[string]struct{}, error) {
	if len(dates) == 0 {
		return map[string]struct{}{}, nil
	}

	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = d.Time
	}

	query := `
		SELECT date FROM readings
		WHERE city = $1 AND country_code = $2 AND date = ANY($3)
	`
	rows, err := s.db.QueryContext(ctx, query, city, countryCode, pq.Array(days))
	if err != nil {
		return nil, fmt.Errorf("query existing dates: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan existing date: %w", err)
		}
		existing[domain.DateOf(day).String()] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing dates: %w", err)
	}
	return existing, nil
}

// InsertMany inserts each reading independently so one failure never blocks
// its siblings. Duplicate rows hit the unique index and are dropped by
// ON CONFLICT DO NOTHING; other per-record errors are collected and joined.
func (s *WeatherStore) InsertMany(ctx context.Context, readings []domain.Reading) (int, error) {
	query := `
		INSERT INTO readings (
			city, country_code, latitude, longitude,
			date, temperature_mean, weather_description, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (city, country_code, date) DO NOTHING
	`

	inserted := 0
	var errs []error
	for _, r := range readings {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = domain.Now()
		}
		res, err := s.db.ExecContext(ctx, query,
			r.City, r.CountryCode, r.Latitude, r.Longitude,
			r.Date.Time, r.TemperatureMean, r.WeatherDescription, createdAt,
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("insert reading %s: %w", r.Key(), err))
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, errors.Join(errs...)
}

func (s *WeatherStore) FindRange(ctx context.Context, city, countryCode string, from, to domain.Date) ([]domain.Reading, error) {
	query := `
		SELECT city, country_code, latitude, longitude,
		       date, temperature_mean, weather_description, created_at
		FROM readings
		WHERE city = $1 AND country_code = $2 AND date BETWEEN $3 AND $4
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, city, countryCode, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("query readings range: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

func (s *WeatherStore) FindByCityAndDate(ctx context.Context, city, countryCode string, date domain.Date) (domain.Reading, error) {
	query := `
		SELECT city, country_code, latitude, longitude,
		       date, temperature_mean, weather_description, created_at
		FROM readings
		WHERE city = $1 AND country_code = $2 AND date = $3
	`
	row := s.db.QueryRowContext(ctx, query, city, countryCode, date.Time)

	r, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reading{}, store.ErrNotFound
		}
		return domain.Reading{}, fmt.Errorf("query reading: %w", err)
	}
	return r, nil
}

func (s *WeatherStore) FindDistinctCities(ctx context.Context) ([]domain.CityCountry, error) {
	query := `
		SELECT DISTINCT city, country_code FROM readings
		ORDER BY city, country_code
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query distinct cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.CityCountry
	for rows.Next() {
		var c domain.CityCountry
		if err := rows.Scan(&c.City, &c.CountryCode); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (domain.Reading, error) {
	var (
		r   domain.Reading
		day time.Time
	)
	err := row.Scan(
		&r.City, &r.CountryCode, &r.Latitude, &r.Longitude,
		&day, &r.TemperatureMean, &r.WeatherDescription, &r.CreatedAt,
	)
	if err != nil {
		return domain.Reading{}, err
	}
	r.Date = domain.DateOf(day)
	return r, nil
}

func scanReadings(rows *sql.Rows) ([]domain.Reading, error) {
	var readings []domain.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return readings, nil
}
