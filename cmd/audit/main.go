// Command audit evaluates a temperature compliance audit from the terminal
// and prints the per-week evidence. It runs the same engine as the API, so a
// created audit is persisted and visible to the service afterwards.
//
// Usage:
//
//	go run ./cmd/audit \
//	  -city Madrid -country ES \
//	  -from 2024-06-01 -to 2024-08-31 \
//	  -threshold 18
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"weather-audit/internal/audit"
	"weather-audit/internal/config"
	"weather-audit/internal/domain"
	"weather-audit/internal/observability"
	"weather-audit/internal/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	city := flag.String("city", "", "city name")
	country := flag.String("country", "", "2-letter uppercase country code")
	rawFrom := flag.String("from", "", "range start, YYYY-MM-DD")
	rawTo := flag.String("to", "", "range end, YYYY-MM-DD")
	threshold := flag.Float64("threshold", 0, "minimum compliant weekly average, °C")
	flag.Parse()

	if *city == "" || *country == "" || *rawFrom == "" || *rawTo == "" {
		flag.Usage()
		return errors.New("missing required flags: -city, -country, -from, -to")
	}

	dateFrom, err := domain.ParseDate(*rawFrom)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	dateTo, err := domain.ParseDate(*rawTo)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsForTesting()

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	engine := audit.NewEngine(postgres.NewWeatherStore(db), postgres.NewAuditStore(db), logger, metrics)

	result, err := engine.CreateAudit(ctx, *city, *country, dateFrom, dateTo, *threshold)
	if err != nil {
		return reportGateFailure(err)
	}

	printAudit(result)
	return nil
}

// reportGateFailure renders data-gap failures with their remediation command
// so the operator can backfill and retry.
func reportGateFailure(err error) error {
	var (
		noData     *domain.NoDataError
		incomplete *domain.IncompleteDataError
	)
	switch {
	case errors.As(err, &noData):
		fmt.Fprintf(os.Stderr, "%v\n%s", noData, remediationHint(noData.Remediation))
	case errors.As(err, &incomplete):
		fmt.Fprintf(os.Stderr, "%v\n%s", incomplete, remediationHint(incomplete.Remediation))
	}
	return err
}

func remediationHint(fetch domain.FetchRequest) string {
	return fmt.Sprintf("to fill the gap, run:\n  go run ./cmd/backfill -cities %q -weeks %d\n",
		fetch.Body.City+":"+fetch.Body.CountryCode, fetch.Body.WeeksBack)
}

func printAudit(a *domain.Audit) {
	verdict := "NON-COMPLIANT"
	if a.Compliant {
		verdict = "COMPLIANT"
	}

	fmt.Printf("audit %s\n", a.AuditID)
	fmt.Printf("%s, %s  %s .. %s  threshold %g°C\n",
		a.City, a.CountryCode, a.DateFrom, a.DateTo, a.ThresholdTemp)
	fmt.Printf("verdict: %s (%d/%d weeks, %d%%)\n\n",
		verdict, a.Metadata.WeeksCompliant, a.Metadata.TotalWeeks, a.Metadata.ComplianceRate)

	fmt.Printf("%-6s %-12s %-12s %9s %6s  %s\n", "week", "start", "end", "avg °C", "days", "status")
	for _, e := range a.Evidences {
		status := "fail"
		if e.Compliant {
			status = "ok"
		}
		fmt.Printf("%-6d %-12s %-12s %9.2f %6d  %s\n",
			e.WeekNumber, e.WeekStart, e.WeekEnd, e.AvgTemp, e.DaysInWeek, status)
	}
}
