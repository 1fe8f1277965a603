package domain

import (
	"fmt"
	"math"
)

// NotFoundError reports that geocoding produced no match for a city. The
// message distinguishes an unconstrained lookup from one scoped to a country.
type NotFoundError struct {
	City        string
	CountryCode string
}

func (e *NotFoundError) Error() string {
	if e.CountryCode != "" {
		return fmt.Sprintf("city %q not found in country %q", e.City, e.CountryCode)
	}
	return fmt.Sprintf("city %q not found", e.City)
}

// FetchRequest is the exact ingestion call a caller should issue to repair a
// data gap. It is embedded in gate failures so callers can self-correct
// without guessing parameters.
type FetchRequest struct {
	Method   string           `json:"method"`
	Endpoint string           `json:"endpoint"`
	Body     FetchRequestBody `json:"body"`
}

// FetchRequestBody is the ingest request body inside a remediation hint.
type FetchRequestBody struct {
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	WeeksBack   int    `json:"weeksBack"`
}

// RemediationFor builds the corrective ingestion call for a range starting at
// dateFrom: weeksBack is the ceiling of (today − dateFrom) in weeks, never
// below 1 so the hint is always a valid request.
func RemediationFor(city, countryCode string, dateFrom Date) FetchRequest {
	days := dateFrom.DaysUntil(Today())
	weeksBack := int(math.Ceil(float64(days) / 7))
	if weeksBack < 1 {
		weeksBack = 1
	}
	return FetchRequest{
		Method:   "POST",
		Endpoint: "/api/v1/weather/fetch",
		Body: FetchRequestBody{
			City:        city,
			CountryCode: countryCode,
			WeeksBack:   weeksBack,
		},
	}
}

// NoDataError reports that an audited range holds no readings at all.
type NoDataError struct {
	City        string
	CountryCode string
	DateFrom    Date
	DateTo      Date
	Remediation FetchRequest
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no weather data found for %s, %s between %s and %s",
		e.City, e.CountryCode, e.DateFrom, e.DateTo)
}

// IncompleteDataError reports that an audited range is missing days. The
// engine never aggregates over a partial range silently.
type IncompleteDataError struct {
	City        string
	CountryCode string
	Found       int
	Expected    int
	Missing     int
	Remediation FetchRequest
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("incomplete weather data: found %d/%d days (missing %d)",
		e.Found, e.Expected, e.Missing)
}
