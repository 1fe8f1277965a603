// Command backfill ingests historical daily weather for a list of cities
// without going through the HTTP API. It reuses the production pipeline, so
// re-running it against ranges that were already ingested only fills gaps.
//
// Usage:
//
//	go run ./cmd/backfill \
//	  -cities "Madrid:ES,Berlin:DE,Oslo:NO" \
//	  -weeks 52
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"weather-audit/internal/adapter/openmeteo"
	"weather-audit/internal/config"
	"weather-audit/internal/observability"
	"weather-audit/internal/pipeline"
	"weather-audit/internal/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cities := flag.String("cities", "", `comma-separated "City:CC" pairs, e.g. "Madrid:ES,Berlin:DE"`)
	weeks := flag.Int("weeks", 52, "number of trailing weeks to ingest per city")
	flag.Parse()

	targets, err := parseCities(*cities)
	if err != nil {
		flag.Usage()
		return err
	}
	if *weeks < 1 {
		return fmt.Errorf("-weeks must be at least 1, got %d", *weeks)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsForTesting()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	limiter := rate.NewLimiter(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderRateBurst)
	geocoder := openmeteo.NewCachedGeocoder(
		openmeteo.NewGeocoder(cfg.GeocodingBaseURL, cfg.OpenMeteoTimeout, limiter, logger),
		cfg.GeocodeCacheSize,
	)
	archive := openmeteo.NewArchiveClient(
		cfg.ArchiveBaseURL, cfg.OpenMeteoTimeout, limiter, cfg.ArchiveChunkDays, logger, metrics,
	)

	errRate := observability.NewErrorRateWindow(cfg.ErrorRateWindow)
	ingestor := pipeline.New(geocoder, archive, postgres.NewWeatherStore(db), logger, metrics, errRate)

	failed := 0
	for _, t := range targets {
		result, err := ingestor.Ingest(ctx, t.city, t.countryCode, *weeks)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("interrupted: %w", ctx.Err())
			}
			fmt.Fprintf(os.Stderr, "FAIL %s, %s: %v\n", t.city, t.countryCode, err)
			failed++
			continue
		}
		fmt.Printf("%s, %s: %d inserted, %d duplicates, %d dropped (%s .. %s)\n",
			t.city, t.countryCode, result.Inserted, result.Duplicates, result.Dropped,
			result.DateFrom, result.DateTo)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cities failed", failed, len(targets))
	}
	return nil
}

type target struct {
	city        string
	countryCode string
}

func parseCities(raw string) ([]target, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing required flag: -cities")
	}

	var targets []target
	for _, pair := range strings.Split(raw, ",") {
		city, countryCode, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || city == "" || len(countryCode) != 2 {
			return nil, fmt.Errorf("invalid city pair %q, want \"City:CC\"", pair)
		}
		targets = append(targets, target{city: city, countryCode: strings.ToUpper(countryCode)})
	}
	return targets, nil
}
