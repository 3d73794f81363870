package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "station_monitor"

// Metrics holds the Prometheus collectors for both pipelines.
type Metrics struct {
	// Station monitor.
	FilesIngested    *prometheus.CounterVec // labels: outcome={created,updated,stale,rejected_name,no_date,undecodable,failed}
	BatchesProcessed prometheus.Counter
	BatchSize        prometheus.Histogram
	BatchDuration    prometheus.Histogram
	StationsTracked  prometheus.Gauge
	StationsByStatus *prometheus.GaugeVec   // labels: status={Online,Delayed,Offline}
	ExtractCache     *prometheus.CounterVec // labels: result={hit,miss}
	PublishErrors    prometheus.Counter

	// Photo renamer.
	RenamerFiles  prometheus.Counter
	RenamerErrors prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Transmission files processed, by outcome.",
		}, []string{"outcome"}),
		BatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Monitor batches processed.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of files per monitor batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete monitor batch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StationsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_tracked",
			Help:      "Stations currently held in the registry.",
		}),
		StationsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_by_status",
			Help:      "Stations per liveness status at the last evaluation.",
		}, []string{"status"}),
		ExtractCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_cache_total",
			Help:      "Date extraction cache lookups by result.",
		}, []string{"result"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_publish_errors_total",
			Help:      "Failed attempts to publish station status snapshots.",
		}),
		RenamerFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renamer_files_total",
			Help:      "Photos assigned to a month slot and packaged.",
		}),
		RenamerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renamer_errors_total",
			Help:      "Renamer runs aborted by invalid input or packaging failures.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesIngested,
		m.BatchesProcessed,
		m.BatchSize,
		m.BatchDuration,
		m.StationsTracked,
		m.StationsByStatus,
		m.ExtractCache,
		m.PublishErrors,
		m.RenamerFiles,
		m.RenamerErrors,
	}
}
