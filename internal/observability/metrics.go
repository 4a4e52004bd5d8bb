package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the dashboard
// pipeline and report generation.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec // labels: outcome={success,load_error,analysis_error,error}
	RunDuration prometheus.Histogram

	RowsRead    prometheus.Counter
	RowsSkipped prometheus.Counter
	Anomalies   prometheus.Counter

	// Report metrics.
	ReportsRendered *prometheus.CounterVec // labels: format={html,pdf}
	ReportErrors    prometheus.Counter

	// Loader cache metrics.
	LoaderCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all dashboard metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_dash",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-analyze-visualize pass.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "rows_read_total",
			Help:      "Total data rows read from station sources.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "rows_skipped_total",
			Help:      "Total malformed or duplicate rows discarded during parsing.",
		}),
		Anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "anomalies_detected_total",
			Help:      "Total anomalies flagged across pipeline runs.",
		}),
		ReportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "reports_rendered_total",
			Help:      "Reports written by output format.",
		}, []string{"format"}),
		ReportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "report_errors_total",
			Help:      "Total report rendering failures.",
		}),
		LoaderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dash",
			Name:      "loader_cache_total",
			Help:      "Loader cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RowsRead,
		m.RowsSkipped,
		m.Anomalies,
		m.ReportsRendered,
		m.ReportErrors,
		m.LoaderCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_dash", Name: "runs_total"}, []string{"outcome"}),
		RunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_dash", Name: "run_duration_seconds"}),
		RowsRead:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_dash", Name: "rows_read_total"}),
		RowsSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_dash", Name: "rows_skipped_total"}),
		Anomalies:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_dash", Name: "anomalies_detected_total"}),
		ReportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_dash", Name: "reports_rendered_total"}, []string{"format"}),
		ReportErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_dash", Name: "report_errors_total"}),
		LoaderCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_dash", Name: "loader_cache_total"}, []string{"result"}),
	}
}
