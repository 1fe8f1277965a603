// Package pipeline implements the weather ingestion flow: resolve a city to
// coordinates, fetch its historical daily weather, map provider days to
// readings, and persist them idempotently. Re-running an ingestion for an
// overlapping range only fills gaps; existing readings are never rewritten.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"weather-audit/internal/domain"
	"weather-audit/internal/observability"
	"weather-audit/internal/store"
)

// Result summarizes one ingestion run.
type Result struct {
	City        string           `json:"city"`
	CountryCode string           `json:"countryCode"`
	DateFrom    domain.Date      `json:"dateFrom"`
	DateTo      domain.Date      `json:"dateTo"`
	Readings    []domain.Reading `json:"readings"`
	Inserted    int              `json:"inserted"`
	Duplicates  int              `json:"duplicates"`
	Dropped     int              `json:"dropped"`
}

// Ingestor orchestrates the geocode-fetch-map-persist flow.
type Ingestor struct {
	geocoder domain.Geocoder
	provider domain.HistoricalWeatherProvider
	weather  store.WeatherStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	errRate  *observability.ErrorRateWindow
}

// New creates an Ingestor with the given stages and observability.
func New(
	geocoder domain.Geocoder,
	provider domain.HistoricalWeatherProvider,
	weather store.WeatherStore,
	logger *slog.Logger,
	metrics *observability.Metrics,
	errRate *observability.ErrorRateWindow,
) *Ingestor {
	return &Ingestor{
		geocoder: geocoder,
		provider: provider,
		weather:  weather,
		logger:   logger,
		metrics:  metrics,
		errRate:  errRate,
	}
}

// Ingest fetches and persists the trailing weeksBack weeks of daily weather
// for a city, ending today.
func (in *Ingestor) Ingest(ctx context.Context, city, countryCode string, weeksBack int) (*Result, error) {
	to := domain.Today()
	from := to.AddDays(-7 * weeksBack)
	return in.IngestRange(ctx, city, countryCode, from, to)
}

// IngestRange fetches and persists daily weather for the inclusive range
// [from, to]. The returned result lists every mapped reading in provider
// order, whether it was newly inserted or already present.
func (in *Ingestor) IngestRange(ctx context.Context, city, countryCode string, from, to domain.Date) (*Result, error) {
	result, err := in.ingestRange(ctx, city, countryCode, from, to)
	in.observeOutcome(err)
	return result, err
}

func (in *Ingestor) ingestRange(ctx context.Context, city, countryCode string, from, to domain.Date) (*Result, error) {
	coords, err := in.geocoder.Resolve(ctx, city, countryCode)
	in.metrics.GeocodeRequests.WithLabelValues(geocodeOutcome(err)).Inc()
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("resolve %s, %s: %w", city, countryCode, err)
		}
		return nil, err
	}

	history, err := in.provider.FetchDaily(ctx, coords.Latitude, coords.Longitude, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch historical weather for %s, %s: %w", city, countryCode, err)
	}

	readings, dropped := in.mapReadings(city, countryCode, history)
	in.metrics.ReadingsMapped.Add(float64(len(readings)))
	in.metrics.ReadingsDropped.Add(float64(dropped))

	inserted, duplicates, err := in.persist(ctx, city, countryCode, readings)
	if err != nil {
		return nil, err
	}

	in.logger.Info("ingestion complete",
		"city", city,
		"country_code", countryCode,
		"date_from", from.String(),
		"date_to", to.String(),
		"mapped", len(readings),
		"inserted", inserted,
		"duplicates", duplicates,
		"dropped", dropped,
	)

	return &Result{
		City:        city,
		CountryCode: countryCode,
		DateFrom:    from,
		DateTo:      to,
		Readings:    readings,
		Inserted:    inserted,
		Duplicates:  duplicates,
		Dropped:     dropped,
	}, nil
}

// mapReadings converts provider days to readings. Days missing either the
// temperature or the weather code are dropped; a reading is all-or-nothing.
func (in *Ingestor) mapReadings(city, countryCode string, history domain.DailyHistory) ([]domain.Reading, int) {
	readings := make([]domain.Reading, 0, len(history.Dates))
	dropped := 0
	for i, date := range history.Dates {
		// A provider array shorter than Dates means the tail days have no
		// value; treat them like explicit nulls.
		if i >= len(history.TemperatureMean) || i >= len(history.WeatherCode) {
			dropped++
			continue
		}
		temp := history.TemperatureMean[i]
		code := history.WeatherCode[i]
		if temp == nil || code == nil {
			dropped++
			continue
		}
		readings = append(readings, domain.Reading{
			City:               city,
			CountryCode:        countryCode,
			Latitude:           history.Latitude,
			Longitude:          history.Longitude,
			Date:               date,
			TemperatureMean:    *temp,
			WeatherDescription: domain.WeatherCodeDescription(*code),
			CreatedAt:          domain.Now(),
		})
	}
	return readings, dropped
}

// persist writes the candidate readings that are not already stored. The
// pre-check keeps insert volume down; the store's uniqueness constraint
// still catches concurrent ingestions that race past it.
func (in *Ingestor) persist(ctx context.Context, city, countryCode string, readings []domain.Reading) (inserted, duplicates int, err error) {
	if len(readings) == 0 {
		return 0, 0, nil
	}

	dates := make([]domain.Date, len(readings))
	for i, r := range readings {
		dates[i] = r.Date
	}
	existing, err := in.weather.FindExistingDates(ctx, city, countryCode, dates)
	if err != nil {
		return 0, 0, fmt.Errorf("check existing dates: %w", err)
	}

	fresh := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		if _, ok := existing[r.Date.String()]; ok {
			continue
		}
		fresh = append(fresh, r)
	}
	duplicates = len(readings) - len(fresh)

	if len(fresh) == 0 {
		in.metrics.ReadingsDuplicate.Add(float64(duplicates))
		return 0, duplicates, nil
	}

	inserted, err = in.weather.InsertMany(ctx, fresh)
	if err != nil {
		if inserted == 0 {
			return 0, duplicates, fmt.Errorf("insert readings: %w", err)
		}
		// Partial failure: keep what landed, surface the rest in logs.
		in.logger.Warn("some readings failed to insert",
			"city", city,
			"country_code", countryCode,
			"inserted", inserted,
			"failed", len(fresh)-inserted,
			"error", err,
		)
	}

	// Races lost to a concurrent ingestion show up as conflict-skipped rows.
	duplicates += len(fresh) - inserted
	in.metrics.ReadingsInserted.Add(float64(inserted))
	in.metrics.ReadingsDuplicate.Add(float64(duplicates))
	return inserted, duplicates, nil
}

func geocodeOutcome(err error) string {
	var notFound *domain.NotFoundError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &notFound):
		return "not_found"
	default:
		return "error"
	}
}

// observeOutcome records the run in the metrics and the sliding error-rate
// window. A geocoding miss counts as a failed run; the caller asked for a
// city the pipeline could not serve.
func (in *Ingestor) observeOutcome(err error) {
	outcome := "success"
	if err != nil {
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
			outcome = "not_found"
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			outcome = "error"
		default:
			outcome = "provider_error"
		}
	}
	in.metrics.IngestRequests.WithLabelValues(outcome).Inc()

	in.errRate.Observe(err != nil)
	in.metrics.IngestErrorRate.Set(in.errRate.Rate())
}
