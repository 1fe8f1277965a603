// Package domain models daily weather readings and temperature-compliance
// audits built from them.
//
// # Data Source
//
// Daily readings originate from the Open-Meteo Historical Weather (archive)
// API, which returns date-indexed parallel arrays of daily mean temperature
// and WMO weather code for a coordinate pair. Coordinates are resolved from a
// city name via the Open-Meteo Geocoding API. Both collaborators are consumed
// through the [Geocoder] and [HistoricalWeatherProvider] interfaces so tests
// and alternative providers can be swapped in.
//
// # Calendar Conventions
//
// Dates:
//
//	A reading belongs to a calendar day with no time component. [Date] wraps a
//	UTC-midnight time.Time and renders as "YYYY-MM-DD" everywhere (JSON, logs,
//	provider query parameters).
//
// Weeks:
//
//	Aggregation uses ISO-8601 weeks (Monday through Sunday). A reading's own
//	date determines its week. WeekStart/WeekEnd on evidence are the Monday and
//	Sunday containing the week's first observed reading, never clipped to the
//	audited range.
//
// Week numbering:
//
//	WeekNumber on [WeeklyEvidence] is a 1-based running counter assigned in
//	the order weeks are first encountered while scanning readings
//	chronologically. It is NOT the calendar ISO week-of-year; the two must not
//	be conflated or audit semantics silently change.
//
// # Rounding
//
// Weekly average temperatures are rounded to two decimals with ties at the
// third decimal resolved upward (round half-up): 2.125 → 2.13. See
// [RoundHalfUp2].
//
// # Weather Codes
//
// WMO weather interpretation codes (0 = clear sky, 61 = light rain, ...).
// Codes outside the table map to "unknown conditions". See
// [WeatherCodeDescription].
//
// # Partial Provider Data
//
// A provider day with a missing temperature or missing weather code is
// dropped silently during ingestion. This is a deliberate tolerance: gaps are
// caught later by the audit completeness gate, which refuses to aggregate
// over an incomplete range.
package domain
