package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/clock"
	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/kvstore"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/notify"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nine = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func TestStateAt(t *testing.T) {
	at := domain.NewTimestamp(nine)

	assert.Equal(t, domain.NotificationPending, notify.StateAt(at, nine.Add(-time.Second), false))
	assert.Equal(t, domain.NotificationDue, notify.StateAt(at, nine, false))
	assert.Equal(t, domain.NotificationDue, notify.StateAt(at, nine.Add(time.Hour), false))
	assert.Equal(t, domain.NotificationDismissed, notify.StateAt(at, nine.Add(time.Hour), true))
	assert.Equal(t, domain.NotificationDismissed, notify.StateAt(at, nine.Add(-time.Hour), true))
	assert.Equal(t, domain.NotificationPending, notify.StateAt(domain.Timestamp{}, nine, false))
}

func TestBuild(t *testing.T) {
	recs := []visibility.Enriched[domain.ActivityRecord]{
		{Record: domain.ActivityRecord{ID: "late", Callback: domain.NewTimestamp(nine.Add(90 * time.Second))}, AgentName: "Ana"},
		{Record: domain.ActivityRecord{ID: "early", Callback: domain.NewTimestamp(nine.Add(-time.Minute))}},
		{Record: domain.ActivityRecord{ID: "gone", Callback: domain.NewTimestamp(nine.Add(-time.Hour))}},
		{Record: domain.ActivityRecord{ID: "none"}},
	}

	got := notify.Build(recs, notify.Set{"gone": {}}, nine)

	require.Len(t, got, 3)
	assert.Equal(t, "gone", got[0].ActivityID)
	assert.Equal(t, domain.NotificationDismissed, got[0].State)
	assert.Equal(t, "early", got[1].ActivityID)
	assert.Equal(t, domain.NotificationDue, got[1].State)
	assert.Equal(t, int64(0), got[1].RemainingSeconds)
	assert.Equal(t, "late", got[2].ActivityID)
	assert.Equal(t, domain.NotificationPending, got[2].State)
	assert.Equal(t, int64(90), got[2].RemainingSeconds)
	assert.Equal(t, "00:01:30", got[2].Remaining)
	assert.Equal(t, "Ana", got[2].AgentName)

	assert.Len(t, notify.Due(got), 1)
}

func TestDismissedStore(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := notify.NewDismissedStore(kv)

	set, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, set)

	require.NoError(t, store.Dismiss(ctx, "u1", "b"))
	require.NoError(t, store.Dismiss(ctx, "u1", "a"))
	require.NoError(t, store.Dismiss(ctx, "u1", "a"))

	keys, err := kv.Keys(ctx, notify.DismissedNamespace("u1"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	// a second store over the same kv sees the same set, as after a restart
	set, err = notify.NewDismissedStore(kv).Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.True(t, set.Has("a"))
	assert.True(t, set.Has("b"))

	other, err := store.Load(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, other.Has("a"))
}

func TestDismissedStore_ConcurrentInstancesKeepEveryDismissal(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	first := notify.NewDismissedStore(kv)
	second := notify.NewDismissedStore(kv)

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for i, id := range ids {
		store := first
		if i%2 == 1 {
			store = second
		}
		wg.Add(1)
		go func(store *notify.DismissedStore, id string) {
			defer wg.Done()
			assert.NoError(t, store.Dismiss(ctx, "u1", id))
		}(store, id)
	}
	wg.Wait()

	set, err := first.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, set, len(ids))
}

func TestDismissedStore_SeparateFromOtherUserData(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, port.UserNamespace("u1"), "draft:activity", []byte(`{}`)))

	set, err := notify.NewDismissedStore(kv).Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, set)
}

type failingKV struct{ port.KeyValueStore }

func (failingKV) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("kv down")
}

func (failingKV) Set(context.Context, string, string, []byte) error {
	return errors.New("kv down")
}

func TestDismissedStore_StoreError(t *testing.T) {
	store := notify.NewDismissedStore(failingKV{})
	_, err := store.Load(context.Background(), "u1")
	assert.ErrorContains(t, err, "kv down")
	assert.ErrorContains(t, store.Dismiss(context.Background(), "u1", "a"), "kv down")
}

// --- poller ---

type fakeSource struct {
	mu       sync.Mutex
	callback map[string][]time.Time
	fail     map[string]bool
	dismiss  notify.Set
}

func (f *fakeSource) Notifications(_ context.Context, userID string, now time.Time) ([]domain.CallbackNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[userID] {
		return nil, errors.New("upstream down")
	}
	var recs []visibility.Enriched[domain.ActivityRecord]
	for i, at := range f.callback[userID] {
		id := userID + "-" + string(rune('a'+i))
		recs = append(recs, visibility.Enriched[domain.ActivityRecord]{
			Record: domain.ActivityRecord{ID: id, CompanyName: "Acme", Callback: domain.NewTimestamp(at)},
		})
	}
	return notify.Build(recs, f.dismiss, now), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CallbackDueEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, value.(domain.CallbackDueEvent))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestPoller_PublishesEachDueCallbackOnce(t *testing.T) {
	src := &fakeSource{
		callback: map[string][]time.Time{"u1": {nine.Add(5 * time.Second), nine.Add(time.Hour)}},
		dismiss:  notify.Set{},
	}
	pub := &recordingPublisher{}
	metrics := observability.NewMetrics()
	p := notify.NewPoller(src, pub, clock.NewFake(nine), 0, []string{"u1"}, metrics, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 0, p.Poll(ctx, nine))
	assert.Equal(t, 1, p.Poll(ctx, nine.Add(10*time.Second)))
	assert.Equal(t, 0, p.Poll(ctx, nine.Add(20*time.Second)), "already published")

	require.Equal(t, 1, pub.count())
	ev := pub.events[0]
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "u1-a", ev.ActivityID)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, nine.Add(10*time.Second), ev.DetectedAt)

	s := metrics.Summary()
	assert.Equal(t, int64(1), s.NotificationsDue)
	assert.Equal(t, int64(3), s.PollerRuns)
}

func TestPoller_SkipsDismissedAndSurvivesFailures(t *testing.T) {
	src := &fakeSource{
		callback: map[string][]time.Time{
			"u1": {nine.Add(-time.Minute)},
			"u3": {nine.Add(-time.Minute)},
		},
		fail:    map[string]bool{"u2": true},
		dismiss: notify.Set{"u1-a": {}},
	}
	pub := &recordingPublisher{}
	p := notify.NewPoller(src, pub, clock.NewFake(nine), 0, []string{"u1", "u2", "u3"}, observability.NewMetrics(), zap.NewNop())

	assert.Equal(t, 1, p.Poll(context.Background(), nine))
	require.Equal(t, 1, pub.count())
	assert.Equal(t, "u3-a", pub.events[0].ActivityID)
}

func TestPoller_ForgetsCallbacksThatStopBeingDue(t *testing.T) {
	src := &fakeSource{
		callback: map[string][]time.Time{
			"u1": {nine.Add(-time.Minute), nine.Add(-2 * time.Minute)},
			"u2": {nine.Add(-time.Minute)},
		},
		fail:    map[string]bool{},
		dismiss: notify.Set{},
	}
	pub := &recordingPublisher{}
	p := notify.NewPoller(src, pub, clock.NewFake(nine), 0, []string{"u1", "u2"}, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	require.Equal(t, 3, p.Poll(ctx, nine))
	assert.Equal(t, 3, p.Tracked())

	src.mu.Lock()
	src.dismiss["u1-a"] = struct{}{}
	src.fail["u2"] = true
	src.mu.Unlock()
	assert.Equal(t, 0, p.Poll(ctx, nine.Add(10*time.Second)))
	assert.Equal(t, 2, p.Tracked(), "dismissed callback dropped, failed user kept")

	src.mu.Lock()
	delete(src.callback, "u2")
	src.fail["u2"] = false
	src.mu.Unlock()
	assert.Equal(t, 0, p.Poll(ctx, nine.Add(20*time.Second)))
	assert.Equal(t, 1, p.Tracked())
	assert.Equal(t, 3, pub.count(), "still due callbacks are not published again")
}

func TestPoller_RetriesAfterPublishFailure(t *testing.T) {
	src := &fakeSource{callback: map[string][]time.Time{"u1": {nine.Add(-time.Minute)}}}
	pub := &recordingPublisher{err: errors.New("broker down")}
	p := notify.NewPoller(src, pub, clock.NewFake(nine), 0, []string{"u1"}, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 0, p.Poll(ctx, nine))

	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()
	assert.Equal(t, 1, p.Poll(ctx, nine.Add(10*time.Second)))
}

func TestPoller_RunsOnIntervalUntilStopped(t *testing.T) {
	clk := clock.NewFake(nine)
	src := &fakeSource{callback: map[string][]time.Time{"u1": {nine.Add(15 * time.Second)}}}
	pub := &recordingPublisher{}
	metrics := observability.NewMetrics()
	p := notify.NewPoller(src, pub, clk, 10*time.Second, []string{"u1"}, metrics, zap.NewNop())
	runs := func() int64 { return metrics.Summary().PollerRuns }

	p.Start(context.Background())
	p.Start(context.Background())
	require.True(t, p.Running())
	assert.Equal(t, 1, clk.Tickers(), "restart must not leak a second timer")

	clk.Advance(10 * time.Second)
	require.Eventually(t, func() bool { return runs() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, pub.count(), "not due yet")

	clk.Advance(10 * time.Second)
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
	assert.Equal(t, 0, clk.Tickers())
}
