package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Dataset loading.
	DatasetRows     prometheus.Gauge
	DatasetDropped  prometheus.Gauge
	ResolvedRoles   prometheus.Gauge
	DatasetLoads    *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadTime prometheus.Histogram

	// Summary computation.
	SummaryRequests *prometheus.CounterVec // labels: cache={hit,miss}
	SummaryDuration prometheus.Histogram
	FilteredRows    prometheus.Histogram

	// Snapshot publishing.
	SnapshotsPublished prometheus.Counter
	SnapshotsFailed    prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the currently loaded dataset.",
		}),
		DatasetDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_dropped_rows",
			Help:      "Rows dropped during the last load because the date could not be parsed.",
		}),
		ResolvedRoles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_resolved_roles",
			Help:      "Number of semantic roles resolved to a column.",
		}),
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete dataset load and schema resolution.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SummaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Summary requests by memo cache result.",
		}, []string{"cache"}),
		SummaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Duration of filtering and aggregation for one uncached summary.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Rows selected by the filters of an uncached summary.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Dataset snapshots written to the snapshot topic.",
		}),
		SnapshotsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_failed_total",
			Help:      "Dataset snapshots that could not be written.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when location geocoding is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetRows,
		m.DatasetDropped,
		m.ResolvedRoles,
		m.DatasetLoads,
		m.DatasetLoadTime,
		m.SummaryRequests,
		m.SummaryDuration,
		m.FilteredRows,
		m.SnapshotsPublished,
		m.SnapshotsFailed,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
