package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast enrichment pipeline.
type Metrics struct {
	SamplesIngested prometheus.Counter
	SamplesEnriched prometheus.Counter
	FetchErrors     prometheus.Counter
	TransformErrors prometheus.Counter
	LoadErrors      prometheus.Counter
	PipelineRunning prometheus.Gauge

	SourceRefreshes *prometheus.CounterVec // label: source={live,fallback}
	DatasetSize     prometheus.Histogram
	RefreshDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "samples_ingested_total",
			Help:      "Total raw forecast samples received from a source.",
		}),
		SamplesEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "samples_enriched_total",
			Help:      "Total samples that completed enrichment.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "fetch_errors_total",
			Help:      "Total failed source fetches (after fallback).",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "transform_errors_total",
			Help:      "Total whole-batch normalization or enrichment failures.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "load_errors_total",
			Help:      "Total failures delivering a dataset to a loader.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forecast_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		SourceRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast_etl",
			Name:      "source_refreshes_total",
			Help:      "Successful refreshes by source mode.",
		}, []string{"source"}),
		DatasetSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "forecast_etl",
			Name:      "dataset_size",
			Help:      "Number of samples per refreshed dataset.",
			Buckets:   []float64{0, 1, 8, 16, 24, 32, 40, 48, 64},
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "forecast_etl",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.SamplesIngested,
		m.SamplesEnriched,
		m.FetchErrors,
		m.TransformErrors,
		m.LoadErrors,
		m.PipelineRunning,
		m.SourceRefreshes,
		m.DatasetSize,
		m.RefreshDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct pipelines repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "samples_ingested_total"}),
		SamplesEnriched: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "samples_enriched_total"}),
		FetchErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "fetch_errors_total"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "transform_errors_total"}),
		LoadErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "load_errors_total"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "forecast_etl", Name: "pipeline_running"}),
		SourceRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "forecast_etl", Name: "source_refreshes_total"}, []string{"source"}),
		DatasetSize:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "forecast_etl", Name: "dataset_size"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "forecast_etl", Name: "refresh_duration_seconds"}),
	}
}
