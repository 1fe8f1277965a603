package domain

import "context"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	// Resolve looks up a city, optionally constrained to a 2-letter country
	// code (empty string for no constraint). Returns *NotFoundError when the
	// provider has no match.
	Resolve(ctx context.Context, city, countryCode string) (Coordinates, error)
}

// DailyHistory is a provider's date-indexed response for a coordinate pair.
// TemperatureMean and WeatherCode parallel Dates; a nil element means the
// provider had no value for that day.
type DailyHistory struct {
	Latitude        float64
	Longitude       float64
	Dates           []Date
	TemperatureMean []*float64
	WeatherCode     []*int
}

// Days returns the number of date entries in the response.
func (h DailyHistory) Days() int {
	return len(h.Dates)
}

// HistoricalWeatherProvider fetches daily mean temperatures and weather codes
// for a coordinate pair over an inclusive date range.
type HistoricalWeatherProvider interface {
	FetchDaily(ctx context.Context, lat, lon float64, from, to Date) (DailyHistory, error)
}
