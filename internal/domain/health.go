package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of one dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSummary is returned by GET /v1/metrics/summary.
type MetricsSummary struct {
	UpstreamErrors   map[string]float64 `json:"upstreamErrors"`
	CacheHitRate     float64            `json:"cacheHitRate"`
	NotificationsDue int64              `json:"notificationsDue"`
	PollerRuns       int64              `json:"pollerRuns"`
	Period           string             `json:"period"`
}
