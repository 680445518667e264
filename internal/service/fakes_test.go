package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/clock"
	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/cache"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Fake ports
// ============================================================

var errUpstream = errors.New("upstream unavailable")

type fakeIdentity struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
	err      error
	calls    int
}

func (f *fakeIdentity) GetUser(_ context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	cp := *p
	return &cp, nil
}

func (f *fakeIdentity) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecords struct {
	mu            sync.Mutex
	accounts      []domain.AccountRecord
	activities    []domain.ActivityRecord
	roster        []domain.RosterEntry
	accountsErr   error
	activitiesErr error
	rosterErr     error
	fetches       int
}

func (f *fakeRecords) FetchAccounts(context.Context) ([]domain.AccountRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.accounts, f.accountsErr
}

func (f *fakeRecords) FetchActivities(context.Context) ([]domain.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.activities, f.activitiesErr
}

func (f *fakeRecords) FetchRoster(context.Context) ([]domain.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roster, f.rosterErr
}

func (f *fakeRecords) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeMutator struct {
	created []domain.ActivityInput
	updated map[string]domain.StatusChange
	deleted []string
	err     error
}

func (f *fakeMutator) CreateActivity(_ context.Context, in *domain.ActivityInput) (*domain.MutationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, *in)
	return &domain.MutationResult{Success: true, Message: "created"}, nil
}

func (f *fakeMutator) UpdateActivityStatus(_ context.Context, id string, change *domain.StatusChange) (*domain.MutationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.updated == nil {
		f.updated = map[string]domain.StatusChange{}
	}
	f.updated[id] = *change
	return &domain.MutationResult{Success: true}, nil
}

func (f *fakeMutator) DeleteActivity(_ context.Context, id string) (*domain.MutationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, id)
	return &domain.MutationResult{Success: true}, nil
}

// ============================================================
// Fixture
// ============================================================

// now is Wednesday 13 March 2024, midday.
var now = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func ts(s string) domain.Timestamp {
	return domain.ParseTimestamp(s, time.UTC)
}

type fixture struct {
	identity  *fakeIdentity
	records   *fakeRecords
	clock     *clock.Fake
	metrics   *observability.Metrics
	dashboard *service.Dashboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureIn(t, time.UTC)
}

// newFixtureIn builds the fixture with the dashboard running in loc.
func newFixtureIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	f := &fixture{
		identity: &fakeIdentity{profiles: map[string]*domain.UserProfile{
			"u-admin": {UserID: "u-admin", ReferenceID: "ADMIN", Role: domain.RoleSuperAdmin},
			"u-mgr":   {UserID: "u-mgr", ReferenceID: "M1", Role: domain.RoleManager},
			"u-tsm":   {UserID: "u-tsm", ReferenceID: "T1", Role: domain.RoleTerritorySalesManager, ManagerID: "M1"},
			"u-a":     {UserID: "u-a", ReferenceID: "A", Role: domain.RoleTerritorySalesAssociate, TSMID: "T1", ManagerID: "M1"},
		}},
		records: &fakeRecords{roster: []domain.RosterEntry{
			{ReferenceID: "A", Firstname: "Ana", Lastname: "Reyes"},
			{ReferenceID: "B", Firstname: "Ben", Lastname: "Cruz"},
		}},
		clock:   clock.NewFake(now),
		metrics: observability.NewMetrics(),
	}
	profiles := cache.New[*domain.UserProfile](time.Minute)
	t.Cleanup(profiles.Close)
	f.dashboard = service.NewDashboard(f.identity, f.records, f.records, profiles, f.clock, loc, f.metrics, zap.NewNop())
	return f
}
