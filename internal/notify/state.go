// Package notify tracks scheduled callbacks through Pending, Due and
// Dismissed, persists dismissals per user and polls for newly due
// callbacks.
package notify

import (
	"cmp"
	"slices"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"
)

// StateAt is the notification state of a callback at now. Dismissal wins
// over everything; a callback with no valid time stays Pending.
func StateAt(callback domain.Timestamp, now time.Time, dismissed bool) domain.NotificationState {
	switch {
	case dismissed:
		return domain.NotificationDismissed
	case callback.Valid && !callback.Time.After(now):
		return domain.NotificationDue
	}
	return domain.NotificationPending
}

// Build turns enriched callback activities into notifications ordered by
// callback time, soonest first. Activities without a valid callback are
// skipped.
func Build(records []visibility.Enriched[domain.ActivityRecord], dismissed Set, now time.Time) []domain.CallbackNotification {
	out := make([]domain.CallbackNotification, 0, len(records))
	for _, e := range records {
		rec := e.Record
		if !rec.Callback.Valid {
			continue
		}
		id := rec.NotificationID()
		cd := timewindow.LiveCountdown(rec.Callback.Time, now)
		out = append(out, domain.CallbackNotification{
			ActivityID:       id,
			CompanyName:      rec.CompanyName,
			ReferenceID:      rec.ReferenceID,
			AgentName:        e.AgentName,
			Callback:         rec.Callback.Time,
			State:            StateAt(rec.Callback, now, dismissed.Has(id)),
			RemainingSeconds: cd.Remaining,
			Remaining:        cd.String(),
		})
	}
	slices.SortStableFunc(out, func(a, b domain.CallbackNotification) int {
		if c := a.Callback.Compare(b.Callback); c != 0 {
			return c
		}
		return cmp.Compare(a.ActivityID, b.ActivityID)
	})
	return out
}

// Due filters notifications down to the Due ones.
func Due(ns []domain.CallbackNotification) []domain.CallbackNotification {
	var out []domain.CallbackNotification
	for _, n := range ns {
		if n.State == domain.NotificationDue {
			out = append(out, n)
		}
	}
	return out
}
