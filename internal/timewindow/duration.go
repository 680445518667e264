package timewindow

import (
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// durations are the activity-timer lengths offered by the activity form.
var durations = map[string]time.Duration{
	"1 Minute":   time.Minute,
	"5 Minutes":  5 * time.Minute,
	"10 Minutes": 10 * time.Minute,
	"15 Minutes": 15 * time.Minute,
	"20 Minutes": 20 * time.Minute,
	"30 Minutes": 30 * time.Minute,
	"1 Hour":     time.Hour,
	"2 Hours":    2 * time.Hour,
	"3 Hours":    3 * time.Hour,
}

// DurationLabels lists the known labels, shortest first.
var DurationLabels = []string{
	"1 Minute", "5 Minutes", "10 Minutes", "15 Minutes", "20 Minutes", "30 Minutes",
	"1 Hour", "2 Hours", "3 Hours",
}

// LookupDuration returns the duration for a label.
func LookupDuration(label string) (time.Duration, bool) {
	d, ok := durations[label]
	return d, ok
}

// DurationToEnd adds the labelled duration to start. Unknown labels leave
// start unchanged.
func DurationToEnd(start time.Time, label string) time.Time {
	if d, ok := durations[label]; ok {
		return start.Add(d)
	}
	return start
}

// DurationToEndTimestamp is DurationToEnd over datetime-local strings
// ("2006-01-02T15:04:05"). Unparseable starts and unknown labels return
// start as given.
func DurationToEndTimestamp(start, label string) string {
	d, ok := durations[label]
	if !ok {
		return start
	}
	ts := domain.ParseTimestamp(start, time.UTC)
	if !ts.Valid {
		return start
	}
	return ts.Time.Add(d).Format(domain.LocalLayout)
}

// ProgressRatio is the elapsed fraction of [start, end] at now, clamped to
// [0, 1]. A non-positive span yields 0.
func ProgressRatio(start, end, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	remaining := end.Sub(now)
	ratio := float64(total-remaining) / float64(total)
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}
