package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest pipeline.
type Metrics struct {
	RecordsDiscovered prometheus.Counter
	RecordsDecoded    prometheus.Counter
	RecordsStored     prometheus.Counter
	DecodeErrors      *prometheus.CounterVec // label: kind (decode failure taxonomy)
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Store and notification metrics.
	StoreBytesWritten      prometheus.Counter
	NotificationsPublished prometheus.Counter
	NotifyErrors           prometheus.Counter
	NotifyEnabled          prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "records_discovered_total",
			Help:      "Total record files handed to the pipeline by discovery.",
		}),
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "records_decoded_total",
			Help:      "Total records decoded into risk grids.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "records_stored_total",
			Help:      "Total decoded records appended to the grid store.",
		}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "decode_errors_total",
			Help:      "Decode failures by kind.",
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dosha_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dosha_etl",
			Name:      "batch_size",
			Help:      "Number of record files per extracted batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dosha_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-decode-store cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StoreBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "store_bytes_written_total",
			Help:      "Bytes appended to the grid store, after compression.",
		}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "notifications_published_total",
			Help:      "Per-record summaries published to the notification topic.",
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dosha_etl",
			Name:      "notify_errors_total",
			Help:      "Failed notification publishes.",
		}),
		NotifyEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dosha_etl",
			Name:      "notify_enabled",
			Help:      "1 when Kafka notifications are enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsDiscovered,
		m.RecordsDecoded,
		m.RecordsStored,
		m.DecodeErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.StoreBytesWritten,
		m.NotificationsPublished,
		m.NotifyErrors,
		m.NotifyEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsDiscovered:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "records_discovered_total"}),
		RecordsDecoded:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "records_decoded_total"}),
		RecordsStored:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "records_stored_total"}),
		DecodeErrors:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "decode_errors_total"}, []string{"kind"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "dosha_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dosha_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dosha_etl", Name: "batch_processing_duration_seconds"}),
		StoreBytesWritten:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "store_bytes_written_total"}),
		NotificationsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "notifications_published_total"}),
		NotifyErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dosha_etl", Name: "notify_errors_total"}),
		NotifyEnabled:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "dosha_etl", Name: "notify_enabled"}),
	}
}
