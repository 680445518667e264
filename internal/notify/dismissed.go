package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/port"
)

// Set is a set of activity ids.
type Set map[string]struct{}

// Has reports membership. A nil Set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// DismissedNamespace is the KeyValueStore namespace holding a user's
// dismissed activity ids, one key per id.
func DismissedNamespace(userID string) string {
	return port.UserNamespace(userID) + ":dismissed"
}

// DismissedStore persists dismissals so they survive restarts. Every
// dismissal is a single key write, so instances sharing a store never
// overwrite each other.
type DismissedStore struct {
	kv  port.KeyValueStore
	now func() time.Time
}

// NewDismissedStore creates a DismissedStore on kv.
func NewDismissedStore(kv port.KeyValueStore) *DismissedStore {
	return &DismissedStore{kv: kv, now: time.Now}
}

// Load returns the user's dismissed set. A store failure is an error.
func (s *DismissedStore) Load(ctx context.Context, userID string) (Set, error) {
	ids, err := s.kv.Keys(ctx, DismissedNamespace(userID))
	if err != nil {
		return nil, fmt.Errorf("load dismissed callbacks: %w", err)
	}
	set := make(Set, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Dismiss adds activityID to the user's set. Dismissing twice is a no-op.
// The stored value is the dismissal time.
func (s *DismissedStore) Dismiss(ctx context.Context, userID, activityID string) error {
	at := []byte(s.now().UTC().Format(time.RFC3339))
	if err := s.kv.Set(ctx, DismissedNamespace(userID), activityID, at); err != nil {
		return fmt.Errorf("save dismissed callbacks: %w", err)
	}
	return nil
}
