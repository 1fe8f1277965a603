package domain

import "time"

// WeeklyEvidence is one week's aggregated contribution to an Audit. It is
// owned exclusively by its Audit and is not independently addressable.
type WeeklyEvidence struct {
	// WeekNumber is a 1-based sequence assigned in the order weeks are first
	// encountered scanning readings chronologically. Not the ISO week-of-year.
	WeekNumber int `json:"weekNumber"`

	// WeekStart and WeekEnd bound the ISO week (Monday and Sunday) containing
	// the week's first observed reading. Not clipped to the audited range.
	WeekStart Date `json:"weekStart"`
	WeekEnd   Date `json:"weekEnd"`

	// AvgTemp is the mean of TemperatureMean over the week's readings,
	// rounded half-up to 2 decimals.
	AvgTemp float64 `json:"avgTemp"`

	// DaysInWeek counts contributing readings; fewer than 7 is expected at
	// range boundaries.
	DaysInWeek int `json:"daysInWeek"`

	Compliant bool `json:"compliant"`
}

// AuditMetadata summarizes the week set an audit evaluated.
type AuditMetadata struct {
	TotalWeeks        int    `json:"totalWeeks"`
	WeeksCompliant    int    `json:"weeksCompliant"`
	WeeksNonCompliant int    `json:"weeksNonCompliant"`
	ComplianceRate    int    `json:"complianceRate"` // round(100 * compliant / total), 0 when total is 0
	Rule              string `json:"rule"`
}

// Audit is an immutable compliance snapshot: did the city's weekly average
// temperatures stay at or above the threshold across the audited range, given
// the readings available at creation time. Audits are append-only; they are
// never mutated or deleted.
type Audit struct {
	AuditID       string           `json:"auditId"`
	City          string           `json:"city"`
	CountryCode   string           `json:"countryCode"`
	DateFrom      Date             `json:"dateFrom"`
	DateTo        Date             `json:"dateTo"`
	ThresholdTemp float64          `json:"thresholdTemp"`
	Compliant     bool             `json:"compliant"`
	CreatedAt     time.Time        `json:"createdAt"`
	Metadata      AuditMetadata    `json:"metadata"`
	Evidences     []WeeklyEvidence `json:"evidences"`
}
