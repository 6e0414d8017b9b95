package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the report pipeline.
type Metrics struct {
	StatusRequests *prometheus.CounterVec // labels: outcome={cached,generated,error}, forced={true,false}

	// Freshness cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,stale,miss,error}
	CacheWrites  *prometheus.CounterVec // labels: result={ok,error}

	// Generation metrics.
	Generations        *prometheus.CounterVec   // labels: path={direct,search}, outcome={success,error}
	GenerationDuration *prometheus.HistogramVec // labels: path={direct,search}

	// Upstream collaborator metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error}
	UpstreamDuration prometheus.Histogram
	SourceFetches    *prometheus.CounterVec // labels: outcome={success,error}

	ReportsPublished *prometheus.CounterVec // labels: result={ok,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StatusRequests,
		m.CacheLookups,
		m.CacheWrites,
		m.Generations,
		m.GenerationDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SourceFetches,
		m.ReportsPublished,
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
		StatusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "requests_total",
			Help:      "Status endpoint requests by outcome and force flag.",
		}, []string{"outcome", "forced"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "cache_lookups_total",
			Help:      "Durable cache lookups by result.",
		}, []string{"result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "cache_writes_total",
			Help:      "Durable cache writes by result.",
		}, []string{"result"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "generations_total",
			Help:      "Report generations by retrieval path and outcome.",
		}, []string{"path", "outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prygl_status",
			Name:      "generation_duration_seconds",
			Help:      "Duration of a complete report generation by retrieval path.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"path"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "upstream_requests_total",
			Help:      "Model backend requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prygl_status",
			Name:      "upstream_request_duration_seconds",
			Help:      "Model backend request duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "source_fetches_total",
			Help:      "Direct source page fetches by outcome.",
		}, []string{"outcome"}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prygl_status",
			Name:      "reports_published_total",
			Help:      "Report events published to Kafka by result.",
		}, []string{"result"}),
	}
}
