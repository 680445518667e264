package visibility_test

import (
	"testing"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrich(t *testing.T) {
	roster := []domain.RosterEntry{
		{ReferenceID: "A", Firstname: "Ana", Lastname: "Reyes"},
		{ReferenceID: "B"},
	}
	records := []domain.AccountRecord{
		{CompanyName: "one", ReferenceID: "A"},
		{CompanyName: "two", ReferenceID: "B"},
		{CompanyName: "three", ReferenceID: "Z"},
		{CompanyName: "four"},
	}

	got := visibility.Enrich(records, roster)

	require.Len(t, got, 4)
	assert.Equal(t, "Ana Reyes", got[0].AgentName)
	assert.Equal(t, domain.UnknownAgent, got[1].AgentName)
	assert.Equal(t, domain.UnknownAgent, got[2].AgentName)
	assert.Equal(t, domain.UnknownAgent, got[3].AgentName)
	assert.Equal(t, "three", got[2].Record.CompanyName)
}

func TestEnrich_EmptyRoster(t *testing.T) {
	got := visibility.Enrich([]domain.AccountRecord{{ReferenceID: "A"}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, domain.UnknownAgent, got[0].AgentName)
}

func amount(s string) domain.Amount {
	return domain.Amount{Decimal: decimal.RequireFromString(s)}
}

func TestCompanyAggregates(t *testing.T) {
	activities := []domain.ActivityRecord{
		{CompanyName: "Acme", TypeActivity: "Outbound Call", QuotationAmount: amount("100.50"), DateCreated: ts("2024-01-01")},
		{CompanyName: "acme ", TypeActivity: "Inbound Call", SOAmount: amount("40"), DateCreated: ts("2024-02-01")},
		{CompanyName: "Acme", TypeActivity: "Email", QuotationAmount: amount("0.25")},
		{CompanyName: "Globex", TypeActivity: "Outbound Call"},
		{CompanyName: "Initech", TypeActivity: "Email"},
	}

	got := visibility.CompanyAggregates(activities)

	require.Len(t, got, 3)
	assert.Equal(t, "Acme", got[0].CompanyName)
	assert.Equal(t, 3, got[0].Activities)
	assert.Equal(t, 2, got[0].Calls)
	assert.Equal(t, "100.75", got[0].QuotationTotal.StringFixed(2))
	assert.Equal(t, "40.00", got[0].SOTotal.StringFixed(2))
	assert.Equal(t, "2024-02-01", got[0].LastActivity.Day())
	assert.Equal(t, "Globex", got[1].CompanyName)
	assert.Equal(t, "Initech", got[2].CompanyName)
}

func TestSuggestCompanies(t *testing.T) {
	names := []string{"Acme Corporation", "acme corporation", "Globex", "Acme", "Initech", ""}

	assert.Equal(t, []string{"Acme", "Acme Corporation"}, visibility.SuggestCompanies(names, "acme", 0))
	assert.Equal(t, []string{"Acme"}, visibility.SuggestCompanies(names, "acme", 1))
	assert.Equal(t, []string{"Acme", "Acme Corporation", "Globex", "Initech"}, visibility.SuggestCompanies(names, "", 0))
	assert.Empty(t, visibility.SuggestCompanies(names, "zzz", 5))
}
