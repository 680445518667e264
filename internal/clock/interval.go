package clock

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Interval runs a function on a repeating tick. At most one run is active:
// Start stops the previous run before starting a new one, and Stop waits
// for the running goroutine to exit. fn must not call Stop or Start.
type Interval struct {
	clock port.Clock

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewInterval creates an idle Interval on clk.
func NewInterval(clk port.Clock) *Interval {
	return &Interval{clock: clk}
}

// Start calls fn with the tick time every period until Stop is called or
// ctx is done.
func (i *Interval) Start(ctx context.Context, every time.Duration, fn func(time.Time)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	ticker := i.clock.NewTicker(every)
	done := make(chan struct{})
	i.cancel = cancel
	i.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C():
				fn(now)
			}
		}
	}()
}

// Stop cancels the current run, if any, and waits for it to exit.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
}

func (i *Interval) stopLocked() {
	if i.cancel == nil {
		return
	}
	i.cancel()
	<-i.done
	i.cancel = nil
	i.done = nil
}

// Running reports whether a run is active.
func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.done == nil {
		return false
	}
	select {
	case <-i.done:
		return false
	default:
		return true
	}
}
