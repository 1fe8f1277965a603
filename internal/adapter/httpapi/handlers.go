package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"weather-audit/internal/domain"
	"weather-audit/internal/pipeline"
	"weather-audit/internal/store"
)

// WeatherIngestor triggers ingestion runs.
type WeatherIngestor interface {
	Ingest(ctx context.Context, city, countryCode string, weeksBack int) (*pipeline.Result, error)
}

// AuditService evaluates and retrieves compliance audits.
type AuditService interface {
	CreateAudit(ctx context.Context, city, countryCode string, dateFrom, dateTo domain.Date, thresholdTemp float64) (*domain.Audit, error)
	GetByAuditID(ctx context.Context, auditID string) (*domain.Audit, error)
	List(ctx context.Context, opts store.ListOptions) ([]domain.Audit, error)
	ListByCity(ctx context.Context, city, countryCode string, opts store.ListOptions) ([]domain.Audit, error)
}

// WeatherReader serves stored readings.
type WeatherReader interface {
	FindRange(ctx context.Context, city, countryCode string, from, to domain.Date) ([]domain.Reading, error)
	FindByCityAndDate(ctx context.Context, city, countryCode string, date domain.Date) (domain.Reading, error)
	FindDistinctCities(ctx context.Context) ([]domain.CityCountry, error)
}

// Handlers is the thin HTTP layer over the ingestion pipeline and the audit
// engine. It validates input, delegates, and translates errors; no business
// logic lives here.
type Handlers struct {
	ingestor WeatherIngestor
	audits   AuditService
	weather  WeatherReader
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandlers creates the API handler set.
func NewHandlers(ingestor WeatherIngestor, audits AuditService, weather WeatherReader, logger *slog.Logger) *Handlers {
	return &Handlers{
		ingestor: ingestor,
		audits:   audits,
		weather:  weather,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// handleFetchWeather runs an ingestion for the trailing weeksBack weeks and
// returns every reading the provider produced for the range.
func (h *Handlers) handleFetchWeather(w http.ResponseWriter, r *http.Request) {
	var req fetchWeatherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := checkStruct(h.validate, req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), req.City, req.CountryCode, req.WeeksBack)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.weather.FindDistinctCities(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if cities == nil {
		cities = []domain.CityCountry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

// handleGetWeather returns a city's stored readings. With date= it serves the
// single reading for that day; with dateFrom=/dateTo= it serves the inclusive
// range ordered by date ascending.
func (h *Handlers) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	countryCode := chi.URLParam(r, "countryCode")
	if err := parsePathCity(city, countryCode, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	if raw := q.Get("date"); raw != "" {
		h.getWeatherByDate(w, r, city, countryCode, raw)
		return
	}

	from, to, err := parseDateRange(q.Get("dateFrom"), q.Get("dateTo"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	readings, err := h.weather.FindRange(r.Context(), city, countryCode, from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if readings == nil {
		readings = []domain.Reading{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"city":        city,
		"countryCode": countryCode,
		"count":       len(readings),
		"readings":    readings,
	})
}

func (h *Handlers) getWeatherByDate(w http.ResponseWriter, r *http.Request, city, countryCode, raw string) {
	date, err := domain.ParseDate(raw)
	if err != nil {
		writeError(w, h.logger, &validationError{Fields: map[string]string{
			"date": "must be a date in YYYY-MM-DD form",
		}})
		return
	}

	reading, err := h.weather.FindByCityAndDate(r.Context(), city, countryCode, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *Handlers) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := checkStruct(h.validate, req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	audit, err := h.audits.CreateAudit(r.Context(), req.City, req.CountryCode, from, to, *req.ThresholdTemp)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, audit)
}

func (h *Handlers) handleListAudits(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	audits, err := h.audits.List(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAuditList(w, audits, opts)
}

func (h *Handlers) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	if err := h.validate.Var(auditID, "required,uuid4"); err != nil {
		writeError(w, h.logger, &validationError{Fields: map[string]string{
			"auditId": "must be a UUID",
		}})
		return
	}

	audit, err := h.audits.GetByAuditID(r.Context(), auditID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (h *Handlers) handleListCityAudits(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	countryCode := chi.URLParam(r, "countryCode")
	if err := parsePathCity(city, countryCode, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}
	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	audits, err := h.audits.ListByCity(r.Context(), city, countryCode, opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAuditList(w, audits, opts)
}

func writeAuditList(w http.ResponseWriter, audits []domain.Audit, opts store.ListOptions) {
	if audits == nil {
		audits = []domain.Audit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(audits),
		"limit":  opts.Limit,
		"skip":   opts.Skip,
		"audits": audits,
	})
}
