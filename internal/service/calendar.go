package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"
)

// CalendarQuery selects a calendar window. Cursor is a date or datetime,
// today when empty. Field picks the date records are placed by:
// "date_created" (default), "callback" or "startdate".
type CalendarQuery struct {
	UserID string
	Cursor string
	Mode   timewindow.ViewMode
	Field  string
	Search string
}

// CalendarDay is one rendered day and its records.
type CalendarDay struct {
	Date  string                                       `json:"date"`
	Items []visibility.Enriched[domain.ActivityRecord] `json:"items"`
}

// CalendarWindow is the days of one calendar view plus navigation cursors.
type CalendarWindow struct {
	Mode     timewindow.ViewMode `json:"mode"`
	Field    string              `json:"field"`
	Cursor   string              `json:"cursor"`
	Previous string              `json:"previous"`
	Next     string              `json:"next"`
	Days     []CalendarDay       `json:"days"`
	Notices  []domain.Notice     `json:"notices"`
}

// WeekCount is the activity volume of one week-of-month bucket.
type WeekCount struct {
	Week       string `json:"week"`
	Activities int    `json:"activities"`
	Calls      int    `json:"calls"`
}

// WeeklyBreakdown counts a month's activities per "Week N" bucket.
type WeeklyBreakdown struct {
	Month   string          `json:"month"`
	Weeks   []WeekCount     `json:"weeks"`
	Notices []domain.Notice `json:"notices"`
}

// Calendar renders activity calendars over the dashboard's views.
type Calendar struct {
	dashboard *Dashboard
}

// NewCalendar creates a Calendar.
func NewCalendar(d *Dashboard) *Calendar {
	return &Calendar{dashboard: d}
}

func calendarView(field string) (visibility.View[domain.ActivityRecord], func(domain.ActivityRecord) domain.Timestamp, string) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "callback":
		return visibility.CallbacksView, func(a domain.ActivityRecord) domain.Timestamp { return a.Callback }, "callback"
	case "startdate", "start_date":
		return visibility.ScheduledView, func(a domain.ActivityRecord) domain.Timestamp { return a.StartDate }, "startdate"
	}
	return visibility.ActivitiesView, func(a domain.ActivityRecord) domain.Timestamp { return a.DateCreated }, "date_created"
}

// Window returns the days rendered for the cursor and mode, each holding
// the visible activities dated that day in chronological order.
func (c *Calendar) Window(ctx context.Context, q CalendarQuery) (*CalendarWindow, error) {
	ctx, span := tracer.Start(ctx, "Calendar.Window")
	defer span.End()

	d := c.dashboard
	cursor := d.Now()
	if q.Cursor != "" {
		ts := domain.ParseTimestamp(q.Cursor, d.loc)
		if !ts.Valid {
			return nil, &domain.ErrValidation{Field: "cursor", Message: "not a date"}
		}
		cursor = ts.Time.In(d.loc)
	}

	days := timewindow.Days(cursor, q.Mode)
	view, field, fieldName := calendarView(q.Field)
	view.CompareTimestamps = false
	view.Sort = visibility.ByDateAsc(field)

	res, err := runView(ctx, d, Query{
		UserID: q.UserID,
		Filters: domain.FilterState{
			SearchTerm: q.Search,
			StartDate:  days[0].Format(domain.DayLayout),
			EndDate:    days[len(days)-1].Format(domain.DayLayout),
		},
	}, view, "activities", d.fetchActivities)
	if err != nil {
		return nil, err
	}

	byDay := timewindow.GroupByDay(res.Records, func(e visibility.Enriched[domain.ActivityRecord]) domain.Timestamp {
		return field(e.Record)
	}, d.loc)

	out := &CalendarWindow{
		Mode:     q.Mode,
		Field:    fieldName,
		Cursor:   cursor.Format(domain.DayLayout),
		Previous: timewindow.Navigate(cursor, q.Mode, timewindow.Previous).Format(domain.DayLayout),
		Next:     timewindow.Navigate(cursor, q.Mode, timewindow.Next).Format(domain.DayLayout),
		Days:     make([]CalendarDay, len(days)),
		Notices:  res.Notices,
	}
	for i, day := range days {
		key := day.Format(domain.DayLayout)
		items := byDay[key]
		if items == nil {
			items = []visibility.Enriched[domain.ActivityRecord]{}
		}
		out.Days[i] = CalendarDay{Date: key, Items: items}
	}
	return out, nil
}

// WeeklyBreakdown counts the visible activities created in month
// ("2006-01", the current month when empty) per week-of-month bucket.
func (c *Calendar) WeeklyBreakdown(ctx context.Context, userID, month string) (*WeeklyBreakdown, error) {
	ctx, span := tracer.Start(ctx, "Calendar.WeeklyBreakdown")
	defer span.End()

	d := c.dashboard
	if month == "" {
		month = d.Now().Format("2006-01")
	}
	first, next, err := timewindow.MonthBounds(month, d.loc)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "month", Message: "expected YYYY-MM"}
	}

	res, err := d.Activities(ctx, Query{
		UserID: userID,
		Filters: domain.FilterState{
			StartDate: first.Format(domain.DayLayout),
			EndDate:   next.Add(-time.Nanosecond).Format(domain.DayLayout),
		},
	})
	if err != nil {
		return nil, err
	}

	buckets := timewindow.GroupByWeekOfMonth(res.Records, func(e visibility.Enriched[domain.ActivityRecord]) domain.Timestamp {
		return e.Record.DateCreated
	}, d.loc)

	out := &WeeklyBreakdown{Month: month, Weeks: make([]WeekCount, len(timewindow.WeekBuckets)), Notices: res.Notices}
	for i, label := range timewindow.WeekBuckets {
		wc := WeekCount{Week: label}
		for _, e := range buckets[label] {
			wc.Activities++
			if e.Record.IsCall() {
				wc.Calls++
			}
		}
		out.Weeks[i] = wc
	}
	return out, nil
}
