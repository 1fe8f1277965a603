package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readingsFrom builds one reading per day starting at start, taking
// temperatures in order.
func readingsFrom(start Date, temps ...float64) []Reading {
	readings := make([]Reading, len(temps))
	for i, temp := range temps {
		readings[i] = Reading{
			City:            "Madrid",
			CountryCode:     "ES",
			Date:            start.AddDays(i),
			TemperatureMean: temp,
		}
	}
	return readings
}

func TestRoundHalfUp2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.125, 2.13}, // tie resolves up, not to even
		{2.124, 2.12},
		{16.0, 16.0},
		{-2.125, -2.12}, // "up" means toward positive infinity
		{-2.13, -2.13},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundHalfUp2(tt.in), 1e-9, "RoundHalfUp2(%v)", tt.in)
	}
}

func TestBuildWeeklyEvidence_SingleFullWeek(t *testing.T) {
	monday := NewDate(2024, time.November, 25)
	readings := readingsFrom(monday, 10, 12, 14, 16, 18, 20, 22)

	evidences := BuildWeeklyEvidence(readings, 16)

	want := []WeeklyEvidence{{
		WeekNumber: 1,
		WeekStart:  monday,
		WeekEnd:    NewDate(2024, time.December, 1),
		AvgTemp:    16,
		DaysInWeek: 7,
		Compliant:  true, // average equal to the threshold is compliant
	}}
	if diff := cmp.Diff(want, evidences); diff != "" {
		t.Errorf("evidence mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWeeklyEvidence_PartialBoundaryWeeks(t *testing.T) {
	// Thursday through the Sunday of the following week: 4 + 7 days.
	thursday := NewDate(2024, time.November, 28)
	readings := readingsFrom(thursday, 10, 10, 10, 10, 20, 20, 20, 20, 20, 20, 20)

	evidences := BuildWeeklyEvidence(readings, 15)
	require.Len(t, evidences, 2)

	first := evidences[0]
	assert.Equal(t, 1, first.WeekNumber)
	assert.Equal(t, 4, first.DaysInWeek)
	assert.Equal(t, NewDate(2024, time.November, 25), first.WeekStart, "week start is the ISO Monday, not the range start")
	assert.Equal(t, NewDate(2024, time.December, 1), first.WeekEnd)
	assert.InDelta(t, 10.0, first.AvgTemp, 1e-9)
	assert.False(t, first.Compliant)

	second := evidences[1]
	assert.Equal(t, 2, second.WeekNumber)
	assert.Equal(t, 7, second.DaysInWeek)
	assert.Equal(t, NewDate(2024, time.December, 2), second.WeekStart)
	assert.Equal(t, NewDate(2024, time.December, 8), second.WeekEnd)
	assert.InDelta(t, 20.0, second.AvgTemp, 1e-9)
	assert.True(t, second.Compliant)
}

func TestBuildWeeklyEvidence_NumbersWeeksInEncounterOrder(t *testing.T) {
	// Three ISO weeks spanning a year boundary; week numbers restart at 1 for
	// every audit regardless of the ISO week-of-year.
	start := NewDate(2024, time.December, 23)
	temps := make([]float64, 21)
	for i := range temps {
		temps[i] = 5
	}
	evidences := BuildWeeklyEvidence(readingsFrom(start, temps...), 0)

	require.Len(t, evidences, 3)
	for i, e := range evidences {
		assert.Equal(t, i+1, e.WeekNumber)
	}
	assert.Equal(t, NewDate(2024, time.December, 23), evidences[0].WeekStart)
	assert.Equal(t, NewDate(2024, time.December, 30), evidences[1].WeekStart)
	assert.Equal(t, NewDate(2025, time.January, 6), evidences[2].WeekStart)
}

func TestBuildWeeklyEvidence_Empty(t *testing.T) {
	assert.Empty(t, BuildWeeklyEvidence(nil, 10))
}

func TestSummarizeCompliance(t *testing.T) {
	week := func(compliant bool) WeeklyEvidence { return WeeklyEvidence{Compliant: compliant} }

	t.Run("all weeks compliant", func(t *testing.T) {
		meta, compliant := SummarizeCompliance([]WeeklyEvidence{week(true), week(true)}, 18)
		assert.True(t, compliant)
		assert.Equal(t, 2, meta.TotalWeeks)
		assert.Equal(t, 2, meta.WeeksCompliant)
		assert.Equal(t, 0, meta.WeeksNonCompliant)
		assert.Equal(t, 100, meta.ComplianceRate)
		assert.Equal(t, "Average weekly temperature >= 18°C", meta.Rule)
	})

	t.Run("one bad week fails the audit", func(t *testing.T) {
		meta, compliant := SummarizeCompliance([]WeeklyEvidence{week(true), week(false), week(true)}, 18)
		assert.False(t, compliant)
		assert.Equal(t, 3, meta.TotalWeeks)
		assert.Equal(t, 2, meta.WeeksCompliant)
		assert.Equal(t, 1, meta.WeeksNonCompliant)
		assert.Equal(t, 67, meta.ComplianceRate, "2/3 rounds to 67")
	})

	t.Run("threshold renders without trailing zeros", func(t *testing.T) {
		meta, _ := SummarizeCompliance(nil, 17.5)
		assert.Equal(t, "Average weekly temperature >= 17.5°C", meta.Rule)
		assert.Equal(t, 0, meta.ComplianceRate)
	})
}
