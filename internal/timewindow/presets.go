package timewindow

import (
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// Preset is a named relative date range offered by the filter bar.
type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetLast7Days Preset = "last7days"
	PresetThisWeek  Preset = "thisweek"
	PresetLastWeek  Preset = "lastweek"
	PresetThisMonth Preset = "thismonth"
	PresetLastMonth Preset = "lastmonth"
)

// Range resolves the preset against now into inclusive first and last days
// (midnights in now's location). Weeks start on Sunday.
func (p Preset) Range(now time.Time) (time.Time, time.Time, error) {
	today := StartOfDay(now)
	switch Preset(strings.ToLower(string(p))) {
	case PresetToday:
		return today, today, nil
	case PresetYesterday:
		y := today.AddDate(0, 0, -1)
		return y, y, nil
	case PresetLast7Days:
		return today.AddDate(0, 0, -6), today, nil
	case PresetThisWeek:
		return today.AddDate(0, 0, -int(today.Weekday())), today, nil
	case PresetLastWeek:
		sunday := today.AddDate(0, 0, -int(today.Weekday())-7)
		return sunday, sunday.AddDate(0, 0, 6), nil
	case PresetThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today, nil
	case PresetLastMonth:
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		return first, first.AddDate(0, 1, -1), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown date preset %q", string(p))
}

// Apply overwrites the date bounds of f with the preset range.
func (p Preset) Apply(f domain.FilterState, now time.Time) (domain.FilterState, error) {
	start, end, err := p.Range(now)
	if err != nil {
		return f, err
	}
	f.StartDate = start.Format(domain.DayLayout)
	f.EndDate = end.Format(domain.DayLayout)
	return f, nil
}
