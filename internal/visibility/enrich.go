package visibility

import (
	"cmp"
	"slices"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

// Enriched pairs a record with the display name of its owning agent.
type Enriched[R any] struct {
	Record    R      `json:"record"`
	AgentName string `json:"agentName"`
}

// RosterIndex maps reference ids to display names. Later duplicates win.
func RosterIndex(roster []domain.RosterEntry) map[string]string {
	idx := make(map[string]string, len(roster))
	for _, e := range roster {
		if e.ReferenceID == "" {
			continue
		}
		idx[e.ReferenceID] = e.Name()
	}
	return idx
}

// Enrich left-joins agent names onto records. Records without a roster
// match, or whose roster entry has no name, get domain.UnknownAgent.
func Enrich[R domain.Record](records []R, roster []domain.RosterEntry) []Enriched[R] {
	idx := RosterIndex(roster)
	out := make([]Enriched[R], len(records))
	for i, r := range records {
		name := idx[r.Ownership().ReferenceID]
		if name == "" {
			name = domain.UnknownAgent
		}
		out[i] = Enriched[R]{Record: r, AgentName: name}
	}
	return out
}

// ============================================================
// Company aggregates
// ============================================================

// CompanyAggregate summarises the activities of one company.
type CompanyAggregate struct {
	CompanyName    string           `json:"companyName"`
	Activities     int              `json:"activities"`
	Calls          int              `json:"calls"`
	QuotationTotal decimal.Decimal  `json:"quotationTotal"`
	SOTotal        decimal.Decimal  `json:"soTotal"`
	LastActivity   domain.Timestamp `json:"lastActivity"`
}

// CompanyAggregates groups activities by company name (trimmed, case
// folded) and orders the groups by call count, most calls first, then by
// name.
func CompanyAggregates(activities []domain.ActivityRecord) []CompanyAggregate {
	byKey := make(map[string]*CompanyAggregate)
	var order []string
	for _, a := range activities {
		name := strings.TrimSpace(a.CompanyName)
		key := strings.ToLower(name)
		agg, ok := byKey[key]
		if !ok {
			agg = &CompanyAggregate{CompanyName: name}
			byKey[key] = agg
			order = append(order, key)
		}
		agg.Activities++
		if a.IsCall() {
			agg.Calls++
		}
		agg.QuotationTotal = agg.QuotationTotal.Add(a.QuotationAmount.Decimal)
		agg.SOTotal = agg.SOTotal.Add(a.SOAmount.Decimal)
		if compareTimestamps(a.DateCreated, agg.LastActivity) > 0 {
			agg.LastActivity = a.DateCreated
		}
	}

	out := make([]CompanyAggregate, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	slices.SortStableFunc(out, func(a, b CompanyAggregate) int {
		if c := cmp.Compare(b.Calls, a.Calls); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName))
	})
	return out
}

// ============================================================
// Company suggestions
// ============================================================

// SuggestCompanies ranks distinct company names against term with a fuzzy,
// case-insensitive match. An empty term lists names alphabetically.
func SuggestCompanies(names []string, term string, limit int) []string {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, n)
	}

	var out []string
	term = strings.TrimSpace(term)
	if term == "" {
		slices.SortFunc(unique, func(a, b string) int {
			return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
		})
		out = unique
	} else {
		ranks := fuzzy.RankFindNormalizedFold(term, unique)
		slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
			if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
				return c
			}
			return cmp.Compare(strings.ToLower(a.Target), strings.ToLower(b.Target))
		})
		out = make([]string, 0, len(ranks))
		for _, r := range ranks {
			out = append(out, r.Target)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
