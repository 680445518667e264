package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/notify"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"go.uber.org/zap"
)

// NotificationList is the viewer's callback notifications.
type NotificationList struct {
	Items   []domain.CallbackNotification `json:"items"`
	Due     int                           `json:"due"`
	Notices []domain.Notice               `json:"notices"`
}

// Callbacks serves callback notifications and their dismissal. It is also
// the poller's notify.Source.
type Callbacks struct {
	dashboard *Dashboard
	dismissed *notify.DismissedStore
	logger    *zap.Logger
}

// NewCallbacks creates the callbacks service.
func NewCallbacks(d *Dashboard, dismissed *notify.DismissedStore, logger *zap.Logger) *Callbacks {
	return &Callbacks{dashboard: d, dismissed: dismissed, logger: logger}
}

// List returns the viewer's notifications at the current time. A failed
// activity fetch yields an empty list with a notice.
func (c *Callbacks) List(ctx context.Context, userID string) (*NotificationList, error) {
	ctx, span := tracer.Start(ctx, "Callbacks.List")
	defer span.End()

	items, notices, err := c.collect(ctx, userID, c.dashboard.Now())
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Due: len(notify.Due(items)), Notices: notices}, nil
}

// Notifications implements notify.Source. Unlike List, a failed activity
// fetch or dismissed-set load is an error.
func (c *Callbacks) Notifications(ctx context.Context, userID string, now time.Time) ([]domain.CallbackNotification, error) {
	items, notices, err := c.collect(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	for _, n := range notices {
		if n.Source == "activities" || n.Source == "dismissed" {
			return nil, fmt.Errorf("%s unavailable for %s", n.Source, userID)
		}
	}
	return items, nil
}

// Dismiss hides a callback for the viewer, across restarts.
func (c *Callbacks) Dismiss(ctx context.Context, userID, activityID string) error {
	ctx, span := tracer.Start(ctx, "Callbacks.Dismiss")
	defer span.End()

	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return &domain.ErrValidation{Field: "activityId", Message: "required"}
	}
	profile, err := c.dashboard.ResolveProfile(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.dismissed.Dismiss(ctx, profile.UserID, activityID); err != nil {
		return err
	}
	c.logger.Info("callback dismissed", zap.String("user_id", profile.UserID), zap.String("activity_id", activityID))
	return nil
}

func (c *Callbacks) collect(ctx context.Context, userID string, now time.Time) ([]domain.CallbackNotification, []domain.Notice, error) {
	d := c.dashboard
	profile, err := d.ResolveProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	snap := load(ctx, d, "activities", d.fetchActivities)
	visible := visibility.Apply(snap.records, profile, domain.FilterState{}, visibility.CallbacksView.In(d.loc))

	notices := snap.notices
	if notices == nil {
		notices = []domain.Notice{}
	}
	dismissed, err := c.dismissed.Load(ctx, profile.UserID)
	if err != nil {
		c.logger.Warn("dismissed set unavailable", zap.String("user_id", profile.UserID), zap.Error(err))
		notices = append(notices, domain.Notice{Source: "dismissed", Message: "dismissed notifications unavailable"})
		dismissed = notify.Set{}
	}
	return notify.Build(visibility.Enrich(visible, snap.roster), dismissed, now), notices, nil
}
