package timewindow

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Countdown is the time left until a target, in whole seconds.
type Countdown struct {
	Remaining int64 `json:"remainingSeconds"`
	Reached   bool  `json:"reached"`
}

// LiveCountdown computes the countdown to target at now. Remaining never
// goes below zero; Reached is set once it hits zero.
func LiveCountdown(target, now time.Time) Countdown {
	secs := int64(target.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return Countdown{Remaining: secs, Reached: secs <= 0}
}

// HMS splits Remaining into hours, minutes and seconds.
func (c Countdown) HMS() (h, m, s int64) {
	return c.Remaining / 3600, (c.Remaining % 3600) / 60, c.Remaining % 60
}

// String formats the countdown as HH:MM:SS.
func (c Countdown) String() string {
	h, m, s := c.HMS()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Watch reports the countdown to target once immediately and then on every
// one-second tick of clk, returning when the target is reached or ctx ends.
// The ticker is released before Watch returns.
func Watch(ctx context.Context, clk port.Clock, target time.Time, fn func(Countdown)) error {
	ticker := clk.NewTicker(time.Second)
	defer ticker.Stop()

	c := LiveCountdown(target, clk.Now())
	fn(c)
	for !c.Reached {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C():
			c = LiveCountdown(target, now)
			fn(c)
		}
	}
	return nil
}
