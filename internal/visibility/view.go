package visibility

import (
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// View is the declarative description of one list page: which fields the
// search box looks at, which date the range filter applies to, which rows
// the page shows at all, and how the result is ordered.
type View[R domain.Record] struct {
	Name string

	// SearchFields are matched case-insensitively against the search term.
	SearchFields []func(R) string

	// DateField selects the date the range filter applies to. CreatedAt
	// when nil.
	DateField func(R) domain.Timestamp

	// CompareTimestamps compares full instants instead of calendar days.
	CompareTimestamps bool

	// Gates run before the role clause. A row failing any gate is not part
	// of the view at all.
	Gates []func(R) bool

	// Policy is the role clause. DefaultPolicy when nil.
	Policy *Policy

	// Sort orders the result. Descending CreatedAt when nil.
	Sort func(a, b R) int

	// Location is used for calendar-day comparisons and for bounds without
	// an offset. UTC when nil.
	Location *time.Location
}

func (v View[R]) dateOf(r R) domain.Timestamp {
	if v.DateField != nil {
		return v.DateField(r)
	}
	return r.CreatedAt()
}

func (v View[R]) policy() Policy {
	if v.Policy != nil {
		return *v.Policy
	}
	return DefaultPolicy
}

func (v View[R]) location() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	return time.UTC
}

// WithSearch returns a copy of v with extra search fields.
func (v View[R]) WithSearch(fields ...func(R) string) View[R] {
	out := v
	out.SearchFields = append(append([]func(R) string(nil), v.SearchFields...), fields...)
	return out
}

// WithGates returns a copy of v with extra gates.
func (v View[R]) WithGates(gates ...func(R) bool) View[R] {
	out := v
	out.Gates = append(append([]func(R) bool(nil), v.Gates...), gates...)
	return out
}

// In returns a copy of v evaluated in loc.
func (v View[R]) In(loc *time.Location) View[R] {
	out := v
	out.Location = loc
	return out
}

// WithAgentSearch makes the agent display name searchable, resolved through
// the roster by the record's reference id.
func WithAgentSearch[R domain.Record](v View[R], roster []domain.RosterEntry) View[R] {
	names := RosterIndex(roster)
	return v.WithSearch(func(r R) string {
		return names[r.Ownership().ReferenceID]
	})
}

// ============================================================
// Predefined views
// ============================================================

// AccountsView is the company accounts table.
var AccountsView = View[domain.AccountRecord]{
	Name: "accounts",
	SearchFields: []func(domain.AccountRecord) string{
		func(a domain.AccountRecord) string { return a.CompanyName },
		func(a domain.AccountRecord) string { return a.ReferenceID },
		func(a domain.AccountRecord) string { return a.ContactPerson },
	},
}

// ActivitiesView is the full activity log.
var ActivitiesView = View[domain.ActivityRecord]{
	Name:         "activities",
	SearchFields: activitySearchFields,
}

// CallsView shows inbound and outbound calls only.
var CallsView = View[domain.ActivityRecord]{
	Name:         "calls",
	SearchFields: activitySearchFields,
	Gates: []func(domain.ActivityRecord) bool{
		domain.ActivityRecord.IsCall,
	},
}

// CallbacksView shows activities with a scheduled callback, filtered by the
// callback date.
var CallbacksView = View[domain.ActivityRecord]{
	Name:         "callbacks",
	SearchFields: activitySearchFields,
	DateField:    func(a domain.ActivityRecord) domain.Timestamp { return a.Callback },
	Gates: []func(domain.ActivityRecord) bool{
		func(a domain.ActivityRecord) bool { return a.Callback.Valid },
	},
}

// ScheduledView shows timed activities (meetings, visits, breaks) filtered
// by their start instant.
var ScheduledView = View[domain.ActivityRecord]{
	Name:              "scheduled",
	SearchFields:      activitySearchFields,
	DateField:         func(a domain.ActivityRecord) domain.Timestamp { return a.StartDate },
	CompareTimestamps: true,
	Gates: []func(domain.ActivityRecord) bool{
		func(a domain.ActivityRecord) bool { return a.StartDate.Valid },
	},
}

var activitySearchFields = []func(domain.ActivityRecord) string{
	func(a domain.ActivityRecord) string { return a.CompanyName },
	func(a domain.ActivityRecord) string { return a.ReferenceID },
	func(a domain.ActivityRecord) string { return a.ActivityNumber },
	func(a domain.ActivityRecord) string { return a.TypeActivity },
}
