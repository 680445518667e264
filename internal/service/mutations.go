package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Mutations validates activity writes and forwards them upstream. No
// request is sent when validation fails.
type Mutations struct {
	dashboard *Dashboard
	mutator   port.ActivityMutator
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewMutations creates the mutations service.
func NewMutations(d *Dashboard, mutator port.ActivityMutator, validate *validator.Validate, logger *zap.Logger) *Mutations {
	return &Mutations{dashboard: d, mutator: mutator, validate: validate, logger: logger}
}

// CreateActivity records a new activity owned by the viewer. When a
// duration is given without an end date, the end is derived from the
// start.
func (m *Mutations) CreateActivity(ctx context.Context, userID string, in domain.ActivityInput) (*domain.MutationResult, error) {
	ctx, span := tracer.Start(ctx, "Mutations.CreateActivity")
	defer span.End()

	if err := m.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Duration != "" && in.EndDate == "" {
		if in.StartDate == "" {
			return nil, &domain.ErrValidation{Field: "startdate", Message: "is required with a duration"}
		}
		in.EndDate = timewindow.DurationToEndTimestamp(in.StartDate, in.Duration)
	}
	if in.StartDate != "" && in.EndDate != "" {
		loc := m.dashboard.loc
		start := domain.ParseTimestamp(in.StartDate, loc)
		end := domain.ParseTimestamp(in.EndDate, loc)
		if end.Time.Before(start.Time) {
			return nil, &domain.ErrValidation{Field: "enddate", Message: "must not be before startdate"}
		}
	}

	in.QuotationAmount = normalizeAmount(in.QuotationAmount)
	in.SOAmount = normalizeAmount(in.SOAmount)

	profile, err := m.dashboard.ResolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.ReferenceID = profile.ReferenceID
	in.TSM = profile.TSMID
	in.Manager = profile.ManagerID
	switch profile.Role {
	case domain.RoleTerritorySalesManager:
		in.TSM = profile.ReferenceID
	case domain.RoleManager:
		in.Manager = profile.ReferenceID
	}

	res, err := m.mutator.CreateActivity(ctx, &in)
	if err != nil {
		m.dashboard.metrics.IncrUpstreamError("mutations")
		return nil, fmt.Errorf("create activity: %w", err)
	}
	m.logger.Info("activity created",
		zap.String("reference_id", in.ReferenceID),
		zap.String("company", in.CompanyName),
	)
	return res, nil
}

// UpdateActivityStatus changes the status of an activity the viewer can see.
func (m *Mutations) UpdateActivityStatus(ctx context.Context, userID, activityID string, change domain.StatusChange) (*domain.MutationResult, error) {
	ctx, span := tracer.Start(ctx, "Mutations.UpdateActivityStatus")
	defer span.End()
	span.SetAttributes(attribute.String("activity.id", activityID))

	if err := m.validate.Struct(change); err != nil {
		return nil, validationError(err)
	}
	if err := m.authorize(ctx, userID, activityID, "update activity"); err != nil {
		return nil, err
	}

	res, err := m.mutator.UpdateActivityStatus(ctx, activityID, &change)
	if err != nil {
		m.dashboard.metrics.IncrUpstreamError("mutations")
		return nil, fmt.Errorf("update activity status: %w", err)
	}
	return res, nil
}

// DeleteActivity removes an activity the viewer can see.
func (m *Mutations) DeleteActivity(ctx context.Context, userID, activityID string) (*domain.MutationResult, error) {
	ctx, span := tracer.Start(ctx, "Mutations.DeleteActivity")
	defer span.End()
	span.SetAttributes(attribute.String("activity.id", activityID))

	if err := m.authorize(ctx, userID, activityID, "delete activity"); err != nil {
		return nil, err
	}

	res, err := m.mutator.DeleteActivity(ctx, activityID)
	if err != nil {
		m.dashboard.metrics.IncrUpstreamError("mutations")
		return nil, fmt.Errorf("delete activity: %w", err)
	}
	m.logger.Info("activity deleted", zap.String("activity_id", activityID))
	return res, nil
}

// authorize checks that activityID exists and passes the viewer's role
// clause.
func (m *Mutations) authorize(ctx context.Context, userID, activityID, action string) error {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return &domain.ErrValidation{Field: "activityId", Message: "is required"}
	}
	profile, err := m.dashboard.ResolveProfile(ctx, userID)
	if err != nil {
		return err
	}
	activities, err := m.dashboard.fetchActivities(ctx)
	if err != nil {
		m.dashboard.metrics.IncrUpstreamError("activities")
		return fmt.Errorf("load activity: %w", err)
	}
	for _, a := range activities {
		if a.Key() != activityID {
			continue
		}
		if !visibility.DefaultPolicy.Allows(profile, a.Ownership()) {
			return &domain.ErrForbidden{Action: action}
		}
		return nil
	}
	return &domain.ErrNotFound{Resource: "activity", ID: activityID}
}

// normalizeAmount strips thousands separators from a validated amount.
func normalizeAmount(s string) string {
	if d, ok := domain.ParseAmount(s); ok {
		return d.String()
	}
	return s
}
