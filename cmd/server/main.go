package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"weather-audit/internal/adapter/httpapi"
	"weather-audit/internal/adapter/openmeteo"
	"weather-audit/internal/audit"
	"weather-audit/internal/config"
	"weather-audit/internal/observability"
	"weather-audit/internal/pipeline"
	"weather-audit/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	weatherStore := postgres.NewWeatherStore(db)
	auditStore := postgres.NewAuditStore(db)

	// Both Open-Meteo APIs share one limiter so the combined request volume
	// stays inside the provider's budget.
	limiter := rate.NewLimiter(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderRateBurst)

	geocoder := openmeteo.NewCachedGeocoder(
		openmeteo.NewGeocoder(cfg.GeocodingBaseURL, cfg.OpenMeteoTimeout, limiter, logger),
		cfg.GeocodeCacheSize,
	)
	archive := openmeteo.NewArchiveClient(
		cfg.ArchiveBaseURL, cfg.OpenMeteoTimeout, limiter, cfg.ArchiveChunkDays, logger, metrics,
	)

	errRate := observability.NewErrorRateWindow(cfg.ErrorRateWindow)
	ingestor := pipeline.New(geocoder, archive, weatherStore, logger, metrics, errRate)
	engine := audit.NewEngine(weatherStore, auditStore, logger, metrics)

	handlers := httpapi.NewHandlers(ingestor, engine, weatherStore, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, handlers, dbReadiness{db: db}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// dbReadiness reports ready once the database answers a ping.
type dbReadiness struct {
	db *sql.DB
}

func (r dbReadiness) CheckReadiness(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
