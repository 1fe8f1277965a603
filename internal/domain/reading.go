package domain

import "time"

// Reading is one city-day temperature observation. At most one Reading exists
// per (City, CountryCode, Date); readings are created only by the ingestion
// pipeline and are never mutated or deleted afterwards.
type Reading struct {
	City               string    `json:"city"`
	CountryCode        string    `json:"countryCode"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Date               Date      `json:"date"`
	TemperatureMean    float64   `json:"temperatureMean"`
	WeatherDescription string    `json:"weatherDescription"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
}

// Key returns the identity tuple rendered as "city|CC|YYYY-MM-DD".
func (r Reading) Key() string {
	return r.City + "|" + r.CountryCode + "|" + r.Date.String()
}

// CityCountry is a distinct (city, country) pair with stored readings.
type CityCountry struct {
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}
