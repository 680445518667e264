// Package service holds the BFA use cases: resolving the viewer, loading
// and filtering record collections, calendar windows, callback
// notifications, per-user workspace state and activity mutations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// Query is one list request: who is looking and what the filter bar holds.
// A non-empty Preset overrides the date bounds.
type Query struct {
	UserID  string
	Filters domain.FilterState
	Preset  string
}

// ViewResult is a filtered, enriched page of records. Notices report
// collections that could not be loaded; the page still renders.
type ViewResult[R any] struct {
	Profile *domain.UserProfile      `json:"profile"`
	View    string                   `json:"view"`
	Filters domain.FilterState       `json:"filters"`
	Total   int                      `json:"total"`
	Records []visibility.Enriched[R] `json:"records"`
	Notices []domain.Notice          `json:"notices"`
}

// Dashboard loads collections and applies the visibility engine.
type Dashboard struct {
	identity port.IdentityFetcher
	records  port.RecordsFetcher
	roster   port.RosterFetcher
	profiles port.Cache[*domain.UserProfile]
	clock    port.Clock
	loc      *time.Location
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDashboard creates the dashboard service with all dependencies injected.
func NewDashboard(
	identity port.IdentityFetcher,
	records port.RecordsFetcher,
	roster port.RosterFetcher,
	profiles port.Cache[*domain.UserProfile],
	clk port.Clock,
	loc *time.Location,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{
		identity: identity,
		records:  records,
		roster:   roster,
		profiles: profiles,
		clock:    clk,
		loc:      loc,
		metrics:  metrics,
		logger:   logger,
	}
}

// Location is the zone calendar days are evaluated in.
func (d *Dashboard) Location() *time.Location { return d.loc }

// Now is the dashboard clock's current time in Location.
func (d *Dashboard) Now() time.Time { return d.clock.Now().In(d.loc) }

// ResolveProfile turns a user id into a profile. A missing id, or one the
// identity service does not know, is *domain.ErrMissingIdentity.
func (d *Dashboard) ResolveProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.ResolveProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &domain.ErrMissingIdentity{}
	}
	span.SetAttributes(attribute.String("user.id", userID))

	cacheKey := "profile:" + userID
	if p, ok := d.profiles.Get(cacheKey); ok {
		d.metrics.IncrCacheHit("profile")
		return p, nil
	}
	d.metrics.IncrCacheMiss("profile")

	p, err := d.identity.GetUser(ctx, userID)
	if err != nil {
		d.metrics.IncrUpstreamError("identity")
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, &domain.ErrMissingIdentity{ID: userID, Reason: "user not found"}
		}
		d.logger.Error("identity lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	d.profiles.Set(cacheKey, p)
	return p, nil
}

// Accounts lists the company accounts the viewer may see.
func (d *Dashboard) Accounts(ctx context.Context, q Query) (*ViewResult[domain.AccountRecord], error) {
	return runView(ctx, d, q, visibility.AccountsView, "accounts", d.fetchAccounts)
}

// Activities lists the viewer's activity log.
func (d *Dashboard) Activities(ctx context.Context, q Query) (*ViewResult[domain.ActivityRecord], error) {
	return runView(ctx, d, q, visibility.ActivitiesView, "activities", d.fetchActivities)
}

// Calls lists inbound and outbound calls.
func (d *Dashboard) Calls(ctx context.Context, q Query) (*ViewResult[domain.ActivityRecord], error) {
	return runView(ctx, d, q, visibility.CallsView, "activities", d.fetchActivities)
}

// Callbacks lists activities with a scheduled callback, filtered by the
// callback date and ordered soonest first.
func (d *Dashboard) Callbacks(ctx context.Context, q Query) (*ViewResult[domain.ActivityRecord], error) {
	view := visibility.CallbacksView
	view.Sort = visibility.ByDateAsc(func(a domain.ActivityRecord) domain.Timestamp { return a.Callback })
	return runView(ctx, d, q, view, "activities", d.fetchActivities)
}

// CompanySummary aggregates the visible activities per company, most
// calls first.
func (d *Dashboard) CompanySummary(ctx context.Context, q Query) ([]visibility.CompanyAggregate, []domain.Notice, error) {
	res, err := d.Activities(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	acts := make([]domain.ActivityRecord, len(res.Records))
	for i, e := range res.Records {
		acts[i] = e.Record
	}
	return visibility.CompanyAggregates(acts), res.Notices, nil
}

// SuggestCompanies ranks the names of companies the viewer can see
// against term.
func (d *Dashboard) SuggestCompanies(ctx context.Context, userID, term string, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.SuggestCompanies")
	defer span.End()

	profile, err := d.ResolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		accounts   []domain.AccountRecord
		activities []domain.ActivityRecord
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := d.fetchAccounts(gCtx)
		if err != nil {
			d.fetchFailed("accounts", err)
			return nil
		}
		accounts = visibility.Apply(a, profile, domain.FilterState{}, visibility.AccountsView.In(d.loc))
		return nil
	})
	g.Go(func() error {
		a, err := d.fetchActivities(gCtx)
		if err != nil {
			d.fetchFailed("activities", err)
			return nil
		}
		activities = visibility.Apply(a, profile, domain.FilterState{}, visibility.ActivitiesView.In(d.loc))
		return nil
	})
	_ = g.Wait()

	names := make([]string, 0, len(accounts)+len(activities))
	for _, a := range accounts {
		names = append(names, a.CompanyName)
	}
	for _, a := range activities {
		names = append(names, a.CompanyName)
	}
	return visibility.SuggestCompanies(names, term, limit), nil
}

// resolveFilters applies a date preset, if any, against the clock.
func (d *Dashboard) resolveFilters(q Query) (domain.FilterState, error) {
	f := q.Filters
	if q.Preset == "" {
		return f, nil
	}
	f, err := timewindow.Preset(q.Preset).Apply(f, d.Now())
	if err != nil {
		return f, &domain.ErrValidation{Field: "preset", Message: err.Error()}
	}
	return f, nil
}

// fetchAccounts and fetchActivities pin offset-less upstream dates to the
// dashboard's time zone.
func (d *Dashboard) fetchAccounts(ctx context.Context) ([]domain.AccountRecord, error) {
	rs, err := d.records.FetchAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountRecord, len(rs))
	for i, r := range rs {
		out[i] = r.In(d.loc)
	}
	return out, nil
}

func (d *Dashboard) fetchActivities(ctx context.Context) ([]domain.ActivityRecord, error) {
	rs, err := d.records.FetchActivities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ActivityRecord, len(rs))
	for i, r := range rs {
		out[i] = r.In(d.loc)
	}
	return out, nil
}

func (d *Dashboard) fetchFailed(collection string, err error) {
	d.metrics.IncrUpstreamError(collection)
	d.logger.Warn("collection fetch failed",
		zap.String("collection", collection),
		zap.Error(err),
	)
}

// snapshot is one concurrent load of a collection plus the roster. Either
// side may have failed independently.
type snapshot[R any] struct {
	records    []R
	roster     []domain.RosterEntry
	recordsErr error
	notices    []domain.Notice
}

// load fetches the collection and the roster concurrently. A failed fetch
// leaves its side empty and adds a notice; it never fails the load.
func load[R any](ctx context.Context, d *Dashboard, collection string, fetch func(context.Context) ([]R, error)) *snapshot[R] {
	s := &snapshot[R]{records: []R{}}
	var rosterErr error

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := fetch(gCtx)
		if err != nil {
			s.recordsErr = err
			return nil
		}
		s.records = recs
		return nil
	})
	g.Go(func() error {
		roster, err := d.roster.FetchRoster(gCtx)
		if err != nil {
			rosterErr = err
			return nil
		}
		s.roster = roster
		return nil
	})
	_ = g.Wait()

	if s.recordsErr != nil {
		d.fetchFailed(collection, s.recordsErr)
		s.notices = append(s.notices, domain.Notice{Source: collection, Message: "could not load " + collection})
	}
	if rosterErr != nil {
		d.fetchFailed("roster", rosterErr)
		s.notices = append(s.notices, domain.Notice{Source: "roster", Message: "agent names unavailable"})
	}
	return s
}

func runView[R domain.Record](
	ctx context.Context,
	d *Dashboard,
	q Query,
	view visibility.View[R],
	collection string,
	fetch func(context.Context) ([]R, error),
) (*ViewResult[R], error) {
	ctx, span := tracer.Start(ctx, "Dashboard."+view.Name)
	defer span.End()

	start := time.Now()
	defer func() { d.metrics.RecordRequestDuration(view.Name, time.Since(start)) }()

	filters, err := d.resolveFilters(q)
	if err != nil {
		return nil, err
	}
	profile, err := d.ResolveProfile(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	snap := load(ctx, d, collection, fetch)
	v := visibility.WithAgentSearch(view.In(d.loc), snap.roster)
	visible := visibility.Apply(snap.records, profile, filters, v)
	d.metrics.ObserveVisible(view.Name, len(visible))
	span.SetAttributes(attribute.Int("records.visible", len(visible)))

	notices := snap.notices
	if notices == nil {
		notices = []domain.Notice{}
	}
	return &ViewResult[R]{
		Profile: profile,
		View:    view.Name,
		Filters: filters,
		Total:   len(visible),
		Records: visibility.Enrich(visible, snap.roster),
		Notices: notices,
	}, nil
}
