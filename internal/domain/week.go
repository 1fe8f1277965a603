package domain

import (
	"fmt"
	"math"
)

// RoundHalfUp2 rounds to 2 decimal places with ties at the third decimal
// resolved upward: 2.125 → 2.13. The explicit floor(x*100+0.5) form pins the
// half-up tie-break that a bare multiply/round/divide leaves unspecified.
func RoundHalfUp2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// BuildWeeklyEvidence groups readings into ISO weeks and aggregates each week
// against the threshold. Readings must be ordered by date ascending; weeks are
// numbered 1, 2, 3, ... in the order they are first encountered during that
// scan.
func BuildWeeklyEvidence(readings []Reading, thresholdTemp float64) []WeeklyEvidence {
	type weekBucket struct {
		sumTemp   float64
		days      int
		firstDate Date
	}

	buckets := make(map[string]*weekBucket)
	order := make([]string, 0)

	for _, r := range readings {
		key := r.Date.ISOWeekKey()
		b, ok := buckets[key]
		if !ok {
			b = &weekBucket{firstDate: r.Date}
			buckets[key] = b
			order = append(order, key)
		}
		b.sumTemp += r.TemperatureMean
		b.days++
	}

	evidences := make([]WeeklyEvidence, 0, len(order))
	for i, key := range order {
		b := buckets[key]
		avg := RoundHalfUp2(b.sumTemp / float64(b.days))
		weekStart := b.firstDate.ISOWeekStart()
		evidences = append(evidences, WeeklyEvidence{
			WeekNumber: i + 1,
			WeekStart:  weekStart,
			WeekEnd:    weekStart.AddDays(6),
			AvgTemp:    avg,
			DaysInWeek: b.days,
			Compliant:  avg >= thresholdTemp,
		})
	}
	return evidences
}

// SummarizeCompliance derives audit metadata and the overall verdict from a
// week set. Overall compliance is the logical AND across all weeks: a single
// non-compliant week fails the audit.
func SummarizeCompliance(evidences []WeeklyEvidence, thresholdTemp float64) (AuditMetadata, bool) {
	totalWeeks := len(evidences)
	weeksCompliant := 0
	compliant := true
	for _, e := range evidences {
		if e.Compliant {
			weeksCompliant++
		} else {
			compliant = false
		}
	}

	complianceRate := 0
	if totalWeeks > 0 {
		complianceRate = int(math.Round(float64(weeksCompliant) / float64(totalWeeks) * 100))
	}

	return AuditMetadata{
		TotalWeeks:        totalWeeks,
		WeeksCompliant:    weeksCompliant,
		WeeksNonCompliant: totalWeeks - weeksCompliant,
		ComplianceRate:    complianceRate,
		Rule:              fmt.Sprintf("Average weekly temperature >= %g°C", thresholdTemp),
	}, compliant
}
