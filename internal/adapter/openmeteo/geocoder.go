// Package openmeteo implements the domain's Geocoder and
// HistoricalWeatherProvider interfaces against the Open-Meteo geocoding and
// archive APIs. Both clients share a rate limiter so the service stays inside
// Open-Meteo's free-tier request budget.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"weather-audit/internal/domain"
)

// DefaultGeocodingBaseURL is the public Open-Meteo geocoding endpoint.
const DefaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com"

// GeocoderClient implements domain.Geocoder using the Open-Meteo Geocoding
// API.
type GeocoderClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewGeocoder creates an Open-Meteo geocoding client. baseURL is overridable
// for tests; pass DefaultGeocodingBaseURL in production.
func NewGeocoder(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *slog.Logger) *GeocoderClient {
	return &GeocoderClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     logger,
	}
}

// Resolve looks up a city's coordinates, taking the first match. Returns
// *domain.NotFoundError when the provider has no result.
func (c *GeocoderClient) Resolve(ctx context.Context, city, countryCode string) (domain.Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"name":     {city},
		"count":    {"1"},
		"language": {"en"},
	}
	if countryCode != "" {
		params.Set("countryCode", countryCode)
	}
	fullURL := c.baseURL + "/v1/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinates{}, fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var geocodeResp geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&geocodeResp); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}

	if len(geocodeResp.Results) == 0 {
		return domain.Coordinates{}, &domain.NotFoundError{City: city, CountryCode: countryCode}
	}

	match := geocodeResp.Results[0]
	c.logger.Debug("city resolved",
		"city", city,
		"country_code", countryCode,
		"latitude", match.Latitude,
		"longitude", match.Longitude,
	)
	return domain.Coordinates{Latitude: match.Latitude, Longitude: match.Longitude}, nil
}

// Open-Meteo geocoding API response types.

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CountryCode string  `json:"country_code"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
