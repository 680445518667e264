package notify

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/clock"
	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often due callbacks are checked.
const DefaultPollInterval = 10 * time.Second

// Source lists a user's callback notifications as of now.
type Source interface {
	Notifications(ctx context.Context, userID string, now time.Time) ([]domain.CallbackNotification, error)
}

// Poller periodically checks watched users for callbacks that became due
// and publishes each one once per process lifetime. A callback is
// forgotten once it stops being due (dismissed, rescheduled or gone), so
// the published set only holds what is currently due.
type Poller struct {
	source    Source
	publisher port.Publisher
	clock     port.Clock
	interval  *clock.Interval
	every     time.Duration
	users     []string
	metrics   *observability.Metrics
	logger    *zap.Logger

	mu   sync.Mutex
	sent map[string]map[string]struct{} // user id -> published keys
}

// NewPoller creates an idle poller. A non-positive every means
// DefaultPollInterval.
func NewPoller(
	source Source,
	publisher port.Publisher,
	clk port.Clock,
	every time.Duration,
	users []string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Poller {
	if every <= 0 {
		every = DefaultPollInterval
	}
	return &Poller{
		source:    source,
		publisher: publisher,
		clock:     clk,
		interval:  clock.NewInterval(clk),
		every:     every,
		users:     users,
		metrics:   metrics,
		logger:    logger,
		sent:      make(map[string]map[string]struct{}),
	}
}

// Start begins polling until Stop or ctx is done. Starting again replaces
// the previous run.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("callback poller started",
		zap.Duration("interval", p.every),
		zap.Int("users", len(p.users)),
	)
	p.interval.Start(ctx, p.every, func(now time.Time) {
		p.Poll(ctx, now)
	})
}

// Stop halts polling and waits for an in-flight pass to finish.
func (p *Poller) Stop() {
	p.interval.Stop()
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	return p.interval.Running()
}

// Poll runs one pass over the watched users and returns how many events
// were published. A failing user does not stop the others.
func (p *Poller) Poll(ctx context.Context, now time.Time) int {
	published := 0
	failed := false
	for _, userID := range p.users {
		ns, err := p.source.Notifications(ctx, userID, now)
		if err != nil {
			failed = true
			p.logger.Warn("callback poll failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		due := Due(ns)
		current := make(map[string]struct{}, len(due))
		for _, n := range due {
			key := n.ActivityID + "/" + n.Callback.UTC().Format(time.RFC3339)
			current[key] = struct{}{}
			if p.seen(userID, key) {
				continue
			}
			ev := domain.CallbackDueEvent{
				EventID:     uuid.NewString(),
				UserID:      userID,
				ReferenceID: n.ReferenceID,
				ActivityID:  n.ActivityID,
				CompanyName: n.CompanyName,
				Callback:    n.Callback,
				DetectedAt:  now,
			}
			if err := p.publisher.Publish(ctx, userID, ev); err != nil {
				failed = true
				p.logger.Error("publish callback due", zap.String("activity_id", n.ActivityID), zap.Error(err))
				continue
			}
			p.markSent(userID, key)
			p.metrics.IncrNotificationDue()
			published++
		}
		p.forgetExcept(userID, current)
	}
	if failed {
		p.metrics.IncrPollerRun("error")
	} else {
		p.metrics.IncrPollerRun("ok")
	}
	return published
}

// Tracked returns how many published callbacks are remembered.
func (p *Poller) Tracked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, keys := range p.sent {
		n += len(keys)
	}
	return n
}

func (p *Poller) seen(userID, key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sent[userID][key]
	return ok
}

func (p *Poller) markSent(userID, key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent[userID] == nil {
		p.sent[userID] = make(map[string]struct{})
	}
	p.sent[userID][key] = struct{}{}
}

// forgetExcept drops the user's published keys that are no longer due.
func (p *Poller) forgetExcept(userID string, current map[string]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.sent[userID] {
		if _, ok := current[key]; !ok {
			delete(p.sent[userID], key)
		}
	}
	if len(p.sent[userID]) == 0 {
		delete(p.sent, userID)
	}
}
