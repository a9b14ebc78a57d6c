package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Run metrics
	RunsTotal          *prometheus.CounterVec
	ValidationDuration prometheus.Histogram

	// Load metrics
	ManifestLoadDuration *prometheus.HistogramVec
	ManifestLoadErrors   *prometheus.CounterVec

	// Validation metrics
	PluginsValidatedTotal  prometheus.Counter
	VersionsValidatedTotal prometheus.Counter
	FailuresTotal          *prometheus.CounterVec
}

// Run results used as the "result" label of RunsTotal
const (
	ResultClean  = "clean"
	ResultFailed = "failed"
	ResultError  = "error"
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifest_validation_runs_total",
				Help: "Total number of manifest validation runs by result",
			},
			[]string{"result"},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "manifest_validation_duration_seconds",
				Help:    "Time spent validating a decoded manifest",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		ManifestLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "manifest_load_duration_seconds",
				Help:    "Time spent reading and decoding a manifest",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		ManifestLoadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifest_load_errors_total",
				Help: "Total number of manifests that could not be read or decoded",
			},
			[]string{"source", "kind"},
		),
		PluginsValidatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manifest_plugins_validated_total",
				Help: "Total number of plugin entries validated",
			},
		),
		VersionsValidatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manifest_versions_validated_total",
				Help: "Total number of plugin versions validated",
			},
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifest_validation_failures_total",
				Help: "Total number of field validation failures by category",
			},
			[]string{"category"},
		),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.ValidationDuration,
		m.ManifestLoadDuration,
		m.ManifestLoadErrors,
		m.PluginsValidatedTotal,
		m.VersionsValidatedTotal,
		m.FailuresTotal,
	)

	return m
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
