package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// index pipeline.
type Metrics struct {
	JobsConsumed    prometheus.Counter
	ResultsProduced prometheus.Counter
	TransformErrors *prometheus.CounterVec // labels: reason={parse,unit,align,compute}
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Per-job computation metrics.
	ComputeDuration prometheus.Histogram
	DaysPerJob      prometheus.Histogram
	CellDaysMissing prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		JobsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fwi_etl",
			Name:      "jobs_consumed_total",
			Help:      "Total weather-series jobs read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fwi_etl",
			Name:      "results_produced_total",
			Help:      "Total index result sets written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwi_etl",
			Name:      "transform_errors_total",
			Help:      "Job transformation failures by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fwi_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi_etl",
			Name:      "batch_size",
			Help:      "Number of jobs per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi_etl",
			Name:      "compute_duration_seconds",
			Help:      "Alignment plus recurrence time per job.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DaysPerJob: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi_etl",
			Name:      "days_per_job",
			Help:      "Number of aligned days computed per job.",
			Buckets:   []float64{1, 7, 31, 92, 183, 366, 1830, 3660},
		}),
		CellDaysMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fwi_etl",
			Name:      "cell_days_missing_total",
			Help:      "Cell-days masked out by the all-or-nothing missing-data rule.",
		}),
	}

	prometheus.MustRegister(
		m.JobsConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ComputeDuration,
		m.DaysPerJob,
		m.CellDaysMissing,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		JobsConsumed:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fwi_etl", Name: "jobs_consumed_total"}),
		ResultsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fwi_etl", Name: "results_produced_total"}),
		TransformErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fwi_etl", Name: "transform_errors_total"}, []string{"reason"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fwi_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fwi_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fwi_etl", Name: "batch_processing_duration_seconds"}),
		ComputeDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fwi_etl", Name: "compute_duration_seconds"}),
		DaysPerJob:              prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fwi_etl", Name: "days_per_job"}),
		CellDaysMissing:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fwi_etl", Name: "cell_days_missing_total"}),
	}
}
