package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// fetch-and-render pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram

	RenderCache    *prometheus.CounterVec // labels: result={hit,miss}
	RendersTotal   *prometheus.CounterVec // labels: outcome={success,error,empty}
	RenderDuration prometheus.Histogram

	RowsNormalized prometheus.Counter
	RowsSkipped    prometheus.Counter

	EventsPublished prometheus.Counter
	KafkaEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RenderCache,
		m.RendersTotal,
		m.RenderDuration,
		m.RowsNormalized,
		m.RowsSkipped,
		m.EventsPublished,
		m.KafkaEnabled,
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
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "fetch_requests_total",
			Help:      "Upstream AFAD API requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "teq_dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream AFAD API requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		RenderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "render_cache_total",
			Help:      "Render memoization lookups by result.",
		}, []string{"result"}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "renders_total",
			Help:      "Dashboard render passes by outcome; empty means zero rows after filtering.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "teq_dashboard",
			Name:      "render_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-filter-aggregate pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RowsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "rows_normalized_total",
			Help:      "Raw records accepted by the normalizer.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "rows_skipped_total",
			Help:      "Raw records rejected during normalization (bad timestamp or coordinates).",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teq_dashboard",
			Name:      "events_published_total",
			Help:      "Normalized events published to the Kafka sink.",
		}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teq_dashboard",
			Name:      "kafka_enabled",
			Help:      "1 when the Kafka event sink is enabled, 0 otherwise.",
		}),
	}
}
