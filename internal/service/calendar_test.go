package service_test

import (
	"context"
	"testing"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_WeekWindow(t *testing.T) {
	f := newFixture(t)
	f.records.activities = []domain.ActivityRecord{
		{CompanyName: "tue-late", ReferenceID: "A", DateCreated: ts("2024-03-12T16:00:00")},
		{CompanyName: "tue-early", ReferenceID: "A", DateCreated: ts("2024-03-12T08:00:00")},
		{CompanyName: "sun", ReferenceID: "A", DateCreated: ts("2024-03-10T10:00:00")},
		{CompanyName: "next-week", ReferenceID: "A", DateCreated: ts("2024-03-17T10:00:00")},
		{CompanyName: "foreign", ReferenceID: "B", DateCreated: ts("2024-03-12T10:00:00")},
	}
	cal := service.NewCalendar(f.dashboard)

	w, err := cal.Window(context.Background(), service.CalendarQuery{
		UserID: "u-a",
		Cursor: "2024-03-13",
		Mode:   timewindow.ModeWeek,
	})
	require.NoError(t, err)

	require.Len(t, w.Days, 7)
	assert.Equal(t, "2024-03-10", w.Days[0].Date)
	assert.Equal(t, "2024-03-16", w.Days[6].Date)
	assert.Equal(t, "2024-03-06", w.Previous)
	assert.Equal(t, "2024-03-20", w.Next)
	assert.Equal(t, "date_created", w.Field)

	require.Len(t, w.Days[0].Items, 1)
	assert.Equal(t, "sun", w.Days[0].Items[0].Record.CompanyName)
	require.Len(t, w.Days[2].Items, 2)
	assert.Equal(t, "tue-early", w.Days[2].Items[0].Record.CompanyName)
	assert.Equal(t, "tue-late", w.Days[2].Items[1].Record.CompanyName)
	assert.NotNil(t, w.Days[1].Items)
	assert.Empty(t, w.Days[1].Items)
}

func TestCalendar_DefaultWindowEndsAtClockDay(t *testing.T) {
	f := newFixture(t)
	cal := service.NewCalendar(f.dashboard)

	w, err := cal.Window(context.Background(), service.CalendarQuery{UserID: "u-admin"})
	require.NoError(t, err)

	require.Len(t, w.Days, timewindow.DefaultWindowDays)
	assert.Equal(t, "2024-03-10", w.Days[0].Date)
	assert.Equal(t, "2024-03-13", w.Days[len(w.Days)-1].Date)
	assert.Equal(t, "2024-03-13", w.Cursor)
}

func TestCalendar_CallbackField(t *testing.T) {
	f := newFixture(t)
	f.records.activities = []domain.ActivityRecord{
		{CompanyName: "call-me", Callback: ts("2024-03-13T15:00:00"), DateCreated: ts("2024-01-01")},
		{CompanyName: "created-today", DateCreated: ts("2024-03-13T09:00:00")},
	}
	cal := service.NewCalendar(f.dashboard)

	w, err := cal.Window(context.Background(), service.CalendarQuery{
		UserID: "u-admin",
		Cursor: "2024-03-13T10:00:00",
		Mode:   timewindow.ModeDay,
		Field:  "callback",
	})
	require.NoError(t, err)

	require.Len(t, w.Days, 1)
	require.Len(t, w.Days[0].Items, 1)
	assert.Equal(t, "call-me", w.Days[0].Items[0].Record.CompanyName)
	assert.Equal(t, "callback", w.Field)
}

func TestCalendar_InvalidCursor(t *testing.T) {
	f := newFixture(t)
	cal := service.NewCalendar(f.dashboard)

	_, err := cal.Window(context.Background(), service.CalendarQuery{UserID: "u-admin", Cursor: "soon"})

	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cursor", verr.Field)
}

func TestCalendar_WeeklyBreakdown(t *testing.T) {
	f := newFixture(t)
	f.records.activities = []domain.ActivityRecord{
		{CompanyName: "x", TypeActivity: "Outbound Call", DateCreated: ts("2024-03-01T09:00:00")},
		{CompanyName: "x", TypeActivity: "Email", DateCreated: ts("2024-03-07T09:00:00")},
		{CompanyName: "x", TypeActivity: "Email", DateCreated: ts("2024-03-08T09:00:00")},
		{CompanyName: "x", TypeActivity: "Inbound Call", DateCreated: ts("2024-03-31T23:00:00")},
		{CompanyName: "x", TypeActivity: "Email", DateCreated: ts("2024-04-01T00:00:00")},
	}
	cal := service.NewCalendar(f.dashboard)

	got, err := cal.WeeklyBreakdown(context.Background(), "u-admin", "2024-03")
	require.NoError(t, err)

	require.Len(t, got.Weeks, 5)
	assert.Equal(t, service.WeekCount{Week: "Week 1", Activities: 2, Calls: 1}, got.Weeks[0])
	assert.Equal(t, service.WeekCount{Week: "Week 2", Activities: 1}, got.Weeks[1])
	assert.Equal(t, service.WeekCount{Week: "Week 3"}, got.Weeks[2])
	assert.Equal(t, service.WeekCount{Week: "Week 5", Activities: 1, Calls: 1}, got.Weeks[4])
}

func TestCalendar_WeeklyBreakdownDefaultsToCurrentMonth(t *testing.T) {
	f := newFixture(t)
	cal := service.NewCalendar(f.dashboard)

	got, err := cal.WeeklyBreakdown(context.Background(), "u-admin", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", got.Month)

	_, err = cal.WeeklyBreakdown(context.Background(), "u-admin", "March")
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}
