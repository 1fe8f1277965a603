package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"weather-audit/internal/domain"
	"weather-audit/internal/observability"
)

// DefaultArchiveBaseURL is the public Open-Meteo historical archive endpoint.
const DefaultArchiveBaseURL = "https://archive-api.open-meteo.com"

// DefaultChunkDays caps the span of a single archive request. Longer ranges
// are fetched in successive chunks and merged.
const DefaultChunkDays = 92

// ArchiveClient implements domain.HistoricalWeatherProvider using the
// Open-Meteo archive API. A circuit breaker shields the service from a
// flapping upstream; the shared rate limiter keeps request volume polite.
type ArchiveClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	chunkDays  int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewArchiveClient creates an Open-Meteo archive client. baseURL is
// overridable for tests; chunkDays <= 0 selects DefaultChunkDays.
func NewArchiveClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, chunkDays int, logger *slog.Logger, metrics *observability.Metrics) *ArchiveClient {
	if chunkDays <= 0 {
		chunkDays = DefaultChunkDays
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-archive",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &ArchiveClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    limiter,
		breaker:    breaker,
		chunkDays:  chunkDays,
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchDaily retrieves daily mean temperatures and weather codes for the
// inclusive range [from, to]. Ranges longer than chunkDays are walked in an
// explicit loop — one bounded request per chunk, terminating once the chunk
// start passes the requested end — and the per-day arrays are concatenated in
// chronological order.
func (c *ArchiveClient) FetchDaily(ctx context.Context, lat, lon float64, from, to domain.Date) (domain.DailyHistory, error) {
	if to.Before(from.Time) {
		return domain.DailyHistory{}, fmt.Errorf("invalid range: %s after %s", from, to)
	}

	merged := domain.DailyHistory{Latitude: lat, Longitude: lon}
	for chunkStart := from; !chunkStart.After(to.Time); chunkStart = chunkStart.AddDays(c.chunkDays) {
		chunkEnd := chunkStart.AddDays(c.chunkDays - 1)
		if chunkEnd.After(to.Time) {
			chunkEnd = to
		}

		chunk, err := c.fetchChunk(ctx, lat, lon, chunkStart, chunkEnd)
		if err != nil {
			return domain.DailyHistory{}, err
		}

		merged.Latitude = chunk.Latitude
		merged.Longitude = chunk.Longitude
		merged.Dates = append(merged.Dates, chunk.Dates...)
		merged.TemperatureMean = append(merged.TemperatureMean, chunk.TemperatureMean...)
		merged.WeatherCode = append(merged.WeatherCode, chunk.WeatherCode...)
	}
	return merged, nil
}

func (c *ArchiveClient) fetchChunk(ctx context.Context, lat, lon float64, from, to domain.Date) (domain.DailyHistory, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.DailyHistory{}, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"latitude":   {formatCoord(lat)},
		"longitude":  {formatCoord(lon)},
		"start_date": {from.String()},
		"end_date":   {to.String()},
		"daily":      {"temperature_2m_mean,weather_code"},
		"timezone":   {"auto"},
	}
	fullURL := c.baseURL + "/v1/archive?" + params.Encode()

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, fullURL)
	})
	c.metrics.ProviderRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.DailyHistory{}, fmt.Errorf("archive request %s..%s: %w", from, to, err)
	}

	return toDailyHistory(result.(*archiveResponse))
}

func (c *ArchiveClient) doRequest(ctx context.Context, fullURL string) (*archiveResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("archive API error: status %d: %s", resp.StatusCode, body)
	}

	var archiveResp archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&archiveResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &archiveResp, nil
}

func toDailyHistory(resp *archiveResponse) (domain.DailyHistory, error) {
	history := domain.DailyHistory{
		Latitude:        resp.Latitude,
		Longitude:       resp.Longitude,
		TemperatureMean: resp.Daily.Temperature2mMean,
		WeatherCode:     resp.Daily.WeatherCode,
	}
	for _, s := range resp.Daily.Time {
		d, err := domain.ParseDate(s)
		if err != nil {
			return domain.DailyHistory{}, fmt.Errorf("archive response: %w", err)
		}
		history.Dates = append(history.Dates, d)
	}
	if len(history.TemperatureMean) != len(history.Dates) || len(history.WeatherCode) != len(history.Dates) {
		return domain.DailyHistory{}, fmt.Errorf("archive response: daily arrays misaligned: %d dates, %d temperatures, %d codes",
			len(history.Dates), len(history.TemperatureMean), len(history.WeatherCode))
	}
	return history, nil
}

// Open-Meteo archive API response types. Daily arrays may contain JSON nulls
// for days without data, hence the pointer elements.

type archiveResponse struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Daily     archiveDaily `json:"daily"`
}

type archiveDaily struct {
	Time              []string   `json:"time"`
	Temperature2mMean []*float64 `json:"temperature_2m_mean"`
	WeatherCode       []*int     `json:"weather_code"`
}
