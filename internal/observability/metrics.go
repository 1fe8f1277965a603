package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and the audit engine. The struct is injected into the
// components that record on it; nothing in the service touches a hidden
// global counter.
type Metrics struct {
	// Ingestion metrics.
	IngestRequests    *prometheus.CounterVec // labels: outcome={success,not_found,provider_error,error}
	ReadingsMapped    prometheus.Counter
	ReadingsDropped   prometheus.Counter
	ReadingsInserted  prometheus.Counter
	ReadingsDuplicate prometheus.Counter
	IngestErrorRate   prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,not_found,error}

	// Provider metrics.
	ProviderRequestDuration prometheus.Histogram

	// Audit metrics.
	AuditsCreated           *prometheus.CounterVec // labels: outcome={created,no_data,incomplete_data,error}
	AuditEvaluationDuration prometheus.Histogram
	AuditWeeksEvaluated     prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IngestRequests,
		m.ReadingsMapped,
		m.ReadingsDropped,
		m.ReadingsInserted,
		m.ReadingsDuplicate,
		m.IngestErrorRate,
		m.GeocodeRequests,
		m.ProviderRequestDuration,
		m.AuditsCreated,
		m.AuditEvaluationDuration,
		m.AuditWeeksEvaluated,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		IngestRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "ingest_requests_total",
			Help:      "Ingestion pipeline invocations by outcome.",
		}, []string{"outcome"}),
		ReadingsMapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "readings_mapped_total",
			Help:      "Provider days mapped to candidate readings.",
		}),
		ReadingsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "readings_dropped_total",
			Help:      "Provider days dropped for missing temperature or weather code.",
		}),
		ReadingsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "readings_inserted_total",
			Help:      "Readings newly persisted by the pipeline.",
		}),
		ReadingsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "readings_duplicate_total",
			Help:      "Candidate readings skipped because their date already existed.",
		}),
		IngestErrorRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_audit",
			Name:      "ingest_error_rate",
			Help:      "Share of failed ingestions over the sliding window, 0.0-1.0.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by outcome.",
		}, []string{"outcome"}),
		ProviderRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_audit",
			Name:      "provider_request_duration_seconds",
			Help:      "Historical weather provider request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AuditsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_audit",
			Name:      "audits_created_total",
			Help:      "Audit creation attempts by outcome.",
		}, []string{"outcome"}),
		AuditEvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_audit",
			Name:      "audit_evaluation_duration_seconds",
			Help:      "Duration of a complete load-validate-aggregate-persist cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		AuditWeeksEvaluated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_audit",
			Name:      "audit_weeks_evaluated",
			Help:      "Number of ISO weeks aggregated per audit.",
			Buckets:   []float64{1, 2, 4, 8, 13, 26, 52, 104},
		}),
	}
}
