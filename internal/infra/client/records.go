package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// Collection endpoints of the ModuleSales API.
const (
	AccountsPath   = "/api/ModuleSales/UserManagement/CompanyAccounts/FetchAccount"
	ActivitiesPath = "/api/ModuleSales/Task/DailyActivity/FetchProgress"
	RosterPath     = "/api/ModuleSales/UserManagement/TerritorySalesAssociates/FetchUser"
)

// RecordsClient fetches whole record collections. Visibility filtering
// happens in the BFA, not upstream.
type RecordsClient struct {
	up *Upstream
}

// NewRecordsClient creates a new RecordsClient.
func NewRecordsClient(up *Upstream) *RecordsClient {
	return &RecordsClient{up: up}
}

// FetchAccounts returns every company account.
func (c *RecordsClient) FetchAccounts(ctx context.Context) ([]domain.AccountRecord, error) {
	return fetchCollection[domain.AccountRecord](ctx, c.up, "accounts", AccountsPath)
}

// FetchActivities returns every activity log entry.
func (c *RecordsClient) FetchActivities(ctx context.Context) ([]domain.ActivityRecord, error) {
	return fetchCollection[domain.ActivityRecord](ctx, c.up, "activities", ActivitiesPath)
}

// FetchRoster returns the agent roster.
func (c *RecordsClient) FetchRoster(ctx context.Context) ([]domain.RosterEntry, error) {
	return fetchCollection[domain.RosterEntry](ctx, c.up, "roster", RosterPath)
}

func fetchCollection[T any](ctx context.Context, up *Upstream, service, path string) ([]T, error) {
	raw, err := up.call(ctx, service, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeCollection[T](raw)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: service, Err: err}
	}
	return out, nil
}
