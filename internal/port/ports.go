// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// IdentityFetcher resolves a user id into a profile.
type IdentityFetcher interface {
	GetUser(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// RecordsFetcher retrieves the record collections the dashboard renders.
type RecordsFetcher interface {
	FetchAccounts(ctx context.Context) ([]domain.AccountRecord, error)
	FetchActivities(ctx context.Context) ([]domain.ActivityRecord, error)
}

// RosterFetcher retrieves the agent roster used for display-name enrichment.
type RosterFetcher interface {
	FetchRoster(ctx context.Context) ([]domain.RosterEntry, error)
}

// ActivityMutator issues create/update/delete calls for activities.
type ActivityMutator interface {
	CreateActivity(ctx context.Context, in *domain.ActivityInput) (*domain.MutationResult, error)
	UpdateActivityStatus(ctx context.Context, activityID string, change *domain.StatusChange) (*domain.MutationResult, error)
	DeleteActivity(ctx context.Context, activityID string) (*domain.MutationResult, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// KeyValueStore is durable per-namespace key/value persistence for
// dismissed notifications, drafts and activity templates.
type KeyValueStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Keys(ctx context.Context, namespace string) ([]string, error)
}

// UserNamespace is the KeyValueStore namespace owned by one user.
func UserNamespace(userID string) string {
	return "user:" + userID
}

// Clock supplies the current time and tickers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the part of time.Ticker the code depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Publisher sends events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}
