package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	Fetches             *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration       prometheus.Histogram
	ReadingsNormalized  prometheus.Counter
	NormalizationErrors *prometheus.CounterVec // labels: kind
	RowsPublished       prometheus.Counter
	PublishErrors       prometheus.Counter
	PipelineRunning     prometheus.Gauge
	TableRows           prometheus.Gauge
	ActiveAlerts        prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "fetches_total",
			Help:      "Rainfall API fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one fetch-normalize-build cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ReadingsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "readings_normalized_total",
			Help:      "Total reading records extracted from payloads.",
		}),
		NormalizationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "normalization_errors_total",
			Help:      "Per-entry normalization errors by kind.",
		}, []string{"kind"}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "rows_published_total",
			Help:      "Canonical rows written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		TableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_etl",
			Name:      "table_rows",
			Help:      "Row count of the latest canonical table.",
		}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_etl",
			Name:      "active_alerts",
			Help:      "Stations above the alert threshold in the latest table.",
		}),
	}

	prometheus.MustRegister(
		m.Fetches,
		m.FetchDuration,
		m.ReadingsNormalized,
		m.NormalizationErrors,
		m.RowsPublished,
		m.PublishErrors,
		m.PipelineRunning,
		m.TableRows,
		m.ActiveAlerts,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Fetches:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rainfall_etl", Name: "fetches_total"}, []string{"outcome"}),
		FetchDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rainfall_etl", Name: "fetch_duration_seconds"}),
		ReadingsNormalized:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rainfall_etl", Name: "readings_normalized_total"}),
		NormalizationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rainfall_etl", Name: "normalization_errors_total"}, []string{"kind"}),
		RowsPublished:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rainfall_etl", Name: "rows_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rainfall_etl", Name: "publish_errors_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rainfall_etl", Name: "pipeline_running"}),
		TableRows:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rainfall_etl", Name: "table_rows"}),
		ActiveAlerts:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rainfall_etl", Name: "active_alerts"}),
	}
}
