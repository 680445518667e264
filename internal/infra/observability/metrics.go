package observability

import (
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	visibleRecords   *prometheus.HistogramVec
	notificationsDue prometheus.Counter
	pollerRuns       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskflow_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_upstream_errors_total",
				Help: "Total failed upstream fetches by collection.",
			},
			[]string{"collection"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		visibleRecords: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskflow_visible_records",
				Help:    "Number of records left after visibility filtering, by view.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"view"},
		),
		notificationsDue: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "taskflow_notifications_due_total",
				Help: "Total callback notifications that became due.",
			},
		),
		pollerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_poller_runs_total",
				Help: "Total callback poller passes by outcome.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(collection string) {
	m.upstreamErrors.WithLabelValues(collection).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ObserveVisible records how many records a view returned.
func (m *Metrics) ObserveVisible(view string, n int) {
	m.visibleRecords.WithLabelValues(view).Observe(float64(n))
}

// IncrNotificationDue counts a callback that became due.
func (m *Metrics) IncrNotificationDue() {
	m.notificationsDue.Inc()
}

// IncrPollerRun counts one poller pass, "ok" or "error".
func (m *Metrics) IncrPollerRun(status string) {
	m.pollerRuns.WithLabelValues(status).Inc()
}

// Summary returns a snapshot of the counters for GET /v1/metrics/summary.
func (m *Metrics) Summary() *domain.MetricsSummary {
	upstream := map[string]float64{}
	for _, c := range []string{"identity", "accounts", "activities", "roster", "mutations"} {
		if v := counterValue(m.upstreamErrors.WithLabelValues(c)); v > 0 {
			upstream[c] = v
		}
	}

	hits := counterValue(m.cacheHits.WithLabelValues("profile"))
	misses := counterValue(m.cacheMisses.WithLabelValues("profile"))
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.MetricsSummary{
		UpstreamErrors:   upstream,
		CacheHitRate:     hitRate,
		NotificationsDue: int64(counterValue(m.notificationsDue)),
		PollerRuns:       int64(counterValue(m.pollerRuns.WithLabelValues("ok")) + counterValue(m.pollerRuns.WithLabelValues("error"))),
		Period:           "all_time",
	}
}

// counterValue extracts the current float64 value of a counter.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
