package timewindow

import (
	"strings"
	"time"
)

// ViewMode is the span a calendar view renders around its cursor.
type ViewMode string

const (
	ModeDefault ViewMode = "default"
	ModeDay     ViewMode = "day"
	ModeWeek    ViewMode = "week"
	ModeMonth   ViewMode = "month"
)

// DefaultWindowDays is the number of days the default mode renders, ending
// at the cursor.
const DefaultWindowDays = 4

// ParseViewMode maps a query value onto a ViewMode, ModeDefault otherwise.
func ParseViewMode(s string) ViewMode {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDay, ModeWeek, ModeMonth:
		return m
	}
	return ModeDefault
}

// Direction moves the cursor backwards or forwards.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Navigate moves the cursor one step: a day, a week (7 days), a calendar
// month, or DefaultWindowDays days. Month steps clamp to the last day of the
// target month, so Jan 31 + 1 month is Feb 28/29.
func Navigate(cursor time.Time, mode ViewMode, dir Direction) time.Time {
	n := int(dir)
	switch mode {
	case ModeDay:
		return cursor.AddDate(0, 0, n)
	case ModeWeek:
		return cursor.AddDate(0, 0, 7*n)
	case ModeMonth:
		return addMonthsClamped(cursor, n)
	}
	return cursor.AddDate(0, 0, DefaultWindowDays*n)
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Days lists the midnights a view renders for cursor: the DefaultWindowDays
// days ending at the cursor, the cursor day, the Sunday-anchored week
// containing it, or its whole month.
func Days(cursor time.Time, mode ViewMode) []time.Time {
	day := StartOfDay(cursor)
	var start time.Time
	var n int
	switch mode {
	case ModeDay:
		start, n = day, 1
	case ModeWeek:
		start, n = day.AddDate(0, 0, -int(day.Weekday())), 7
	case ModeMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		n = daysIn(day)
	default:
		start, n = day.AddDate(0, 0, -(DefaultWindowDays - 1)), DefaultWindowDays
	}
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}
