package observability_test

import (
	"context"
	"testing"

	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSummary(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrCacheHit("profile")
	m.IncrCacheHit("profile")
	m.IncrCacheHit("profile")
	m.IncrCacheMiss("profile")
	m.IncrUpstreamError("roster")
	m.IncrNotificationDue()
	m.IncrPollerRun("ok")
	m.IncrPollerRun("error")

	s := m.Summary()
	assert.InDelta(t, 0.75, s.CacheHitRate, 1e-9)
	assert.Equal(t, map[string]float64{"roster": 1}, s.UpstreamErrors)
	assert.Equal(t, int64(1), s.NotificationsDue)
	assert.Equal(t, int64(2), s.PollerRuns)
}

func TestNewMetrics_PrivateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics()
		observability.NewMetrics()
	})
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer("", "taskflow-test")
	assert.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
