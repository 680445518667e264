// Package clock provides the wall clock behind an interface so timers and
// countdowns can run on virtual time in tests.
package clock

import (
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Real is the system clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// NewTicker wraps time.NewTicker.
func (Real) NewTicker(d time.Duration) port.Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
