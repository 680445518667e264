// Package timewindow buckets records by calendar unit for the calendar
// views and computes the relative-time values the dashboard keeps live:
// countdowns, progress ratios and duration-based end times.
package timewindow

import (
	"fmt"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// WeekBuckets are the fixed week-of-month labels, in order.
var WeekBuckets = []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}

// WeekOfMonth buckets a date into "Week 1".."Week 5" by (day-1)/7. Days
// 29-31 all land in Week 5; this is not an ISO week.
func WeekOfMonth(t time.Time) string {
	idx := (t.Day() - 1) / 7
	if idx > 4 {
		idx = 4
	}
	return WeekBuckets[idx]
}

// GroupByDay maps "2006-01-02" day keys (in loc) to the records dated that
// day. Records with an invalid date are left out.
func GroupByDay[R any](records []R, field func(R) domain.Timestamp, loc *time.Location) map[string][]R {
	return groupBy(records, field, loc, func(t time.Time) string {
		return t.Format(domain.DayLayout)
	})
}

// GroupByWeekOfMonth maps week-of-month labels to records.
func GroupByWeekOfMonth[R any](records []R, field func(R) domain.Timestamp, loc *time.Location) map[string][]R {
	return groupBy(records, field, loc, WeekOfMonth)
}

// GroupByMonth maps "2006-01" month keys to records.
func GroupByMonth[R any](records []R, field func(R) domain.Timestamp, loc *time.Location) map[string][]R {
	return groupBy(records, field, loc, func(t time.Time) string {
		return t.Format("2006-01")
	})
}

func groupBy[R any](records []R, field func(R) domain.Timestamp, loc *time.Location, key func(time.Time) string) map[string][]R {
	if loc == nil {
		loc = time.UTC
	}
	out := make(map[string][]R)
	for _, r := range records {
		ts := field(r)
		if !ts.Valid {
			continue
		}
		k := key(ts.In(loc).Time)
		out[k] = append(out[k], r)
	}
	return out
}

// MonthBounds returns the first day of month and the first day of the next
// month, in loc. month is "2006-01".
func MonthBounds(month string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	first, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return first, first.AddDate(0, 1, 0), nil
}
