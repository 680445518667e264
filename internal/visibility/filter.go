package visibility

import (
	"slices"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// Apply returns the records of view visible to profile under filters,
// in view order. The input slice is not modified.
func Apply[R domain.Record](records []R, profile *domain.UserProfile, filters domain.FilterState, view View[R]) []R {
	m := newMatcher(profile, filters, view)

	out := make([]R, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}

	sortFn := view.Sort
	if sortFn == nil {
		sortFn = ByDateDesc(func(r R) domain.Timestamp { return r.CreatedAt() })
	}
	slices.SortStableFunc(out, sortFn)
	return out
}

// matcher holds the per-call, pre-parsed filter inputs.
type matcher[R domain.Record] struct {
	profile    *domain.UserProfile
	view       View[R]
	policy     Policy
	term       string
	clientType string
	status     string
	dates      dateRange
}

func newMatcher[R domain.Record](profile *domain.UserProfile, f domain.FilterState, view View[R]) *matcher[R] {
	loc := view.location()
	return &matcher[R]{
		profile:    profile,
		view:       view,
		policy:     view.policy(),
		term:       strings.ToLower(strings.TrimSpace(f.SearchTerm)),
		clientType: strings.TrimSpace(f.ClientType),
		status:     strings.TrimSpace(f.Status),
		dates: dateRange{
			start:      domain.ParseTimestamp(f.StartDate, loc),
			end:        domain.ParseTimestamp(f.EndDate, loc),
			timestamps: view.CompareTimestamps,
			loc:        loc,
		},
	}
}

func (m *matcher[R]) match(r R) bool {
	for _, gate := range m.view.Gates {
		if !gate(r) {
			return false
		}
	}
	if !m.policy.Allows(m.profile, r.Ownership()) {
		return false
	}
	return MatchesText(m.term, r, m.view.SearchFields) &&
		MatchesClientType(m.clientType, r.ClientType()) &&
		MatchesStatus(m.status, r.Status()) &&
		m.dates.contains(m.view.dateOf(r))
}

// MatchesText reports whether any field contains term, ignoring case.
// An empty term matches everything.
func MatchesText[R any](term string, r R, fields []func(R) string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(r)), term) {
			return true
		}
	}
	return false
}

// MatchesClientType compares the client type exactly. The "null" sentinel
// selects records without a client type.
func MatchesClientType(selected, clientType string) bool {
	switch selected {
	case "":
		return true
	case domain.ClientTypeNone:
		return strings.TrimSpace(clientType) == ""
	}
	return clientType == selected
}

// MatchesStatus compares the status exactly when a status is selected.
func MatchesStatus(selected, status string) bool {
	return selected == "" || status == selected
}

// dateRange is an inclusive range where an invalid bound is open.
type dateRange struct {
	start, end domain.Timestamp
	timestamps bool
	loc        *time.Location
}

func (d dateRange) bounded() bool {
	return d.start.Valid || d.end.Valid
}

func (d dateRange) contains(t domain.Timestamp) bool {
	if !d.bounded() {
		return true
	}
	if !t.Valid {
		return false
	}
	t = t.In(d.loc)
	if d.timestamps {
		if d.start.Valid && t.Time.Before(d.start.Time) {
			return false
		}
		if d.end.Valid && t.Time.After(d.end.Time) {
			return false
		}
		return true
	}
	day := dayIn(t.Time, d.loc)
	if d.start.Valid && day < dayIn(d.start.Time, d.loc) {
		return false
	}
	if d.end.Valid && day > dayIn(d.end.Time, d.loc) {
		return false
	}
	return true
}

func dayIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(domain.DayLayout)
}

// InRange reports whether t lies in [start, end] by calendar day in loc.
// Empty bounds are open.
func InRange(t domain.Timestamp, start, end string, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	d := dateRange{
		start: domain.ParseTimestamp(start, loc),
		end:   domain.ParseTimestamp(end, loc),
		loc:   loc,
	}
	return d.contains(t)
}
