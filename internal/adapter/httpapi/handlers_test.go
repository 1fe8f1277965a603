package httpapi_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-audit/internal/adapter/httpapi"
	"weather-audit/internal/domain"
	"weather-audit/internal/pipeline"
	"weather-audit/internal/store"
)

type fakeIngestor struct {
	result *pipeline.Result
	err    error

	gotCity      string
	gotCountry   string
	gotWeeksBack int
}

func (f *fakeIngestor) Ingest(_ context.Context, city, countryCode string, weeksBack int) (*pipeline.Result, error) {
	f.gotCity, f.gotCountry, f.gotWeeksBack = city, countryCode, weeksBack
	return f.result, f.err
}

type fakeAuditService struct {
	audit *domain.Audit
	list  []domain.Audit
	err   error

	gotOpts      store.ListOptions
	gotThreshold float64
}

func (f *fakeAuditService) CreateAudit(_ context.Context, _, _ string, _, _ domain.Date, thresholdTemp float64) (*domain.Audit, error) {
	f.gotThreshold = thresholdTemp
	return f.audit, f.err
}

func (f *fakeAuditService) GetByAuditID(_ context.Context, _ string) (*domain.Audit, error) {
	return f.audit, f.err
}

func (f *fakeAuditService) List(_ context.Context, opts store.ListOptions) ([]domain.Audit, error) {
	f.gotOpts = opts
	return f.list, f.err
}

func (f *fakeAuditService) ListByCity(_ context.Context, _, _ string, opts store.ListOptions) ([]domain.Audit, error) {
	f.gotOpts = opts
	return f.list, f.err
}

type fakeWeatherReader struct {
	readings []domain.Reading
	reading  domain.Reading
	cities   []domain.CityCountry
	err      error

	gotDate domain.Date
}

func (f *fakeWeatherReader) FindRange(_ context.Context, _, _ string, _, _ domain.Date) ([]domain.Reading, error) {
	return f.readings, f.err
}

func (f *fakeWeatherReader) FindByCityAndDate(_ context.Context, _, _ string, date domain.Date) (domain.Reading, error) {
	f.gotDate = date
	return f.reading, f.err
}

func (f *fakeWeatherReader) FindDistinctCities(_ context.Context) ([]domain.CityCountry, error) {
	return f.cities, f.err
}

func serve(t *testing.T, ingestor httpapi.WeatherIngestor, audits httpapi.AuditService, weather httpapi.WeatherReader, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := httpapi.NewHandlers(ingestor, audits, weather, slog.Default())
	srv := httpapi.NewServer(":0", h, &mockReadiness{}, slog.Default())

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFetchWeather(t *testing.T) {
	ingestor := &fakeIngestor{result: &pipeline.Result{
		City:        "Madrid",
		CountryCode: "ES",
		Inserted:    14,
	}}

	rec := serve(t, ingestor, nil, nil, http.MethodPost, "/api/v1/weather/fetch",
		`{"city":"Madrid","countryCode":"ES","weeksBack":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Madrid", ingestor.gotCity)
	assert.Equal(t, 2, ingestor.gotWeeksBack)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(14), body["inserted"])
}

func TestFetchWeather_CountryCodeIsOptional(t *testing.T) {
	ingestor := &fakeIngestor{result: &pipeline.Result{City: "Madrid"}}

	rec := serve(t, ingestor, nil, nil, http.MethodPost, "/api/v1/weather/fetch",
		`{"city":"Madrid","weeksBack":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Madrid", ingestor.gotCity)
	assert.Empty(t, ingestor.gotCountry, "the geocoder gets an unconstrained lookup")
}

func TestFetchWeather_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing city", `{"countryCode":"ES","weeksBack":2}`, "city"},
		{"city too short", `{"city":"M","countryCode":"ES","weeksBack":2}`, "city"},
		{"lowercase country", `{"city":"Madrid","countryCode":"es","weeksBack":2}`, "countryCode"},
		{"three letter country", `{"city":"Madrid","countryCode":"ESP","weeksBack":2}`, "countryCode"},
		{"zero weeks", `{"city":"Madrid","countryCode":"ES","weeksBack":0}`, "weeksBack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor := &fakeIngestor{}
			rec := serve(t, ingestor, nil, nil, http.MethodPost, "/api/v1/weather/fetch", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, ingestor.gotCity, "invalid requests never reach the pipeline")

			body := decodeBody(t, rec)
			details := body["details"].(map[string]any)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestFetchWeather_CityNotFound(t *testing.T) {
	ingestor := &fakeIngestor{err: &domain.NotFoundError{City: "Atlantis", CountryCode: "GR"}}

	rec := serve(t, ingestor, nil, nil, http.MethodPost, "/api/v1/weather/fetch",
		`{"city":"Atlantis","countryCode":"GR","weeksBack":1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["message"], "Atlantis")
}

func TestListCities(t *testing.T) {
	weather := &fakeWeatherReader{cities: []domain.CityCountry{
		{City: "Berlin", CountryCode: "DE"},
		{City: "Madrid", CountryCode: "ES"},
	}}

	rec := serve(t, nil, nil, weather, http.MethodGet, "/api/v1/weather/cities", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["cities"], 2)
}

func TestGetWeather(t *testing.T) {
	weather := &fakeWeatherReader{readings: []domain.Reading{
		{City: "Madrid", CountryCode: "ES", Date: domain.NewDate(2024, time.November, 25), TemperatureMean: 10},
	}}

	rec := serve(t, nil, nil, weather, http.MethodGet,
		"/api/v1/weather/Madrid/ES?dateFrom=2024-11-25&dateTo=2024-12-01", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "Madrid", body["city"])
}

func TestGetWeatherByDate(t *testing.T) {
	weather := &fakeWeatherReader{reading: domain.Reading{
		City:            "Madrid",
		CountryCode:     "ES",
		Date:            domain.NewDate(2024, time.November, 25),
		TemperatureMean: 10.5,
	}}

	rec := serve(t, nil, nil, weather, http.MethodGet,
		"/api/v1/weather/Madrid/ES?date=2024-11-25", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.NewDate(2024, time.November, 25), weather.gotDate)

	body := decodeBody(t, rec)
	assert.Equal(t, "2024-11-25", body["date"])
	assert.Equal(t, 10.5, body["temperatureMean"])
}

func TestGetWeatherByDate_NotFound(t *testing.T) {
	weather := &fakeWeatherReader{err: store.ErrNotFound}

	rec := serve(t, nil, nil, weather, http.MethodGet,
		"/api/v1/weather/Madrid/ES?date=2024-11-25", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWeather_RejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing dates", "/api/v1/weather/Madrid/ES"},
		{"malformed date", "/api/v1/weather/Madrid/ES?dateFrom=25-11-2024&dateTo=2024-12-01"},
		{"malformed single date", "/api/v1/weather/Madrid/ES?date=25-11-2024"},
		{"inverted range", "/api/v1/weather/Madrid/ES?dateFrom=2024-12-01&dateTo=2024-11-25"},
		{"bad country code", "/api/v1/weather/Madrid/esp?dateFrom=2024-11-25&dateTo=2024-12-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, nil, nil, &fakeWeatherReader{}, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateAudit(t *testing.T) {
	audits := &fakeAuditService{audit: &domain.Audit{
		AuditID:   uuid.NewString(),
		City:      "Madrid",
		Compliant: true,
	}}

	rec := serve(t, nil, audits, nil, http.MethodPost, "/api/v1/audits",
		`{"city":"Madrid","countryCode":"ES","dateFrom":"2024-11-25","dateTo":"2024-12-01","thresholdTemp":0}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0.0, audits.gotThreshold, "an explicit zero threshold is accepted")

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["compliant"])
}

func TestCreateAudit_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing threshold", `{"city":"Madrid","countryCode":"ES","dateFrom":"2024-11-25","dateTo":"2024-12-01"}`},
		{"threshold too low", `{"city":"Madrid","countryCode":"ES","dateFrom":"2024-11-25","dateTo":"2024-12-01","thresholdTemp":-80}`},
		{"inverted range", `{"city":"Madrid","countryCode":"ES","dateFrom":"2024-12-01","dateTo":"2024-11-25","thresholdTemp":10}`},
		{"malformed body", `{"city":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, nil, &fakeAuditService{}, nil, http.MethodPost, "/api/v1/audits", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateAudit_IncompleteData(t *testing.T) {
	audits := &fakeAuditService{err: &domain.IncompleteDataError{
		City:        "Madrid",
		CountryCode: "ES",
		Found:       5,
		Expected:    7,
		Missing:     2,
		Remediation: domain.FetchRequest{
			Method:   "POST",
			Endpoint: "/api/v1/weather/fetch",
			Body:     domain.FetchRequestBody{City: "Madrid", CountryCode: "ES", WeeksBack: 1},
		},
	}}

	rec := serve(t, nil, audits, nil, http.MethodPost, "/api/v1/audits",
		`{"city":"Madrid","countryCode":"ES","dateFrom":"2024-11-25","dateTo":"2024-12-01","thresholdTemp":16}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["message"], "incomplete weather data")
	details := body["details"].(map[string]any)
	assert.Equal(t, float64(5), details["found"])
	assert.Equal(t, float64(2), details["missing"])

	fetch := details["fetchRequest"].(map[string]any)
	assert.Equal(t, "/api/v1/weather/fetch", fetch["endpoint"])
}

func TestListAudits(t *testing.T) {
	audits := &fakeAuditService{list: []domain.Audit{{AuditID: uuid.NewString()}}}

	rec := serve(t, nil, audits, nil, http.MethodGet,
		"/api/v1/audits?limit=10&skip=5&sort=createdAt:asc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, audits.gotOpts.Limit)
	assert.Equal(t, 5, audits.gotOpts.Skip)
	assert.True(t, audits.gotOpts.SortAsc)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestListAudits_DefaultsAndBadParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		audits := &fakeAuditService{}
		rec := serve(t, nil, audits, nil, http.MethodGet, "/api/v1/audits", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 50, audits.gotOpts.Limit)
		assert.False(t, audits.gotOpts.SortAsc)
	})

	for _, target := range []string{
		"/api/v1/audits?limit=0",
		"/api/v1/audits?limit=101",
		"/api/v1/audits?skip=-1",
		"/api/v1/audits?sort=thresholdTemp:asc",
	} {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, nil, &fakeAuditService{}, nil, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetAudit(t *testing.T) {
	id := uuid.NewString()
	audits := &fakeAuditService{audit: &domain.Audit{AuditID: id}}

	rec := serve(t, nil, audits, nil, http.MethodGet, "/api/v1/audits/"+id, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, id, body["auditId"])
}

func TestGetAudit_InvalidID(t *testing.T) {
	rec := serve(t, nil, &fakeAuditService{}, nil, http.MethodGet, "/api/v1/audits/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAudit_NotFound(t *testing.T) {
	audits := &fakeAuditService{err: store.ErrNotFound}
	rec := serve(t, nil, audits, nil, http.MethodGet, "/api/v1/audits/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCityAudits(t *testing.T) {
	audits := &fakeAuditService{list: []domain.Audit{{AuditID: uuid.NewString(), City: "Madrid"}}}

	rec := serve(t, nil, audits, nil, http.MethodGet, "/api/v1/audits/city/Madrid/ES", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}
