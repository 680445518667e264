package clock

import (
	"sync"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Fake is a manually advanced clock. Tickers fire during Advance, at most
// one buffered tick per ticker like time.Ticker.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the virtual time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTicker registers a ticker firing every d of virtual time.
func (f *Fake) NewTicker(d time.Duration) port.Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		ch:     make(chan time.Time, 1),
		period: d,
		next:   f.now.Add(d),
		clock:  f,
	}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves virtual time forward by d and fires due tickers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for _, t := range f.tickers {
		for !t.next.After(f.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

// Tickers returns how many tickers are active.
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *Fake) remove(t *fakeTicker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, other := range f.tickers {
		if other == t {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
}

type fakeTicker struct {
	ch     chan time.Time
	period time.Duration
	next   time.Time
	clock  *Fake
	once   sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { t.clock.remove(t) })
}
