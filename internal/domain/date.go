package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time component, held at UTC midnight.
// The zero value is the zero time.Time and reports IsZero.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String renders the date as "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON renders the date as a "YYYY-MM-DD" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse date: expected string, got %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays returns the date shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
// Negative when other precedes d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time) / (24 * time.Hour))
}

// ISOWeekKey identifies the ISO-8601 week containing the date,
// e.g. "2024-W48". ISO weeks run Monday through Sunday.
func (d Date) ISOWeekKey() string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ISOWeekStart returns the Monday of the ISO week containing the date.
func (d Date) ISOWeekStart() Date {
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
