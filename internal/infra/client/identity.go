package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// IdentityClient resolves dashboard user ids via GET /api/user?id=<id>.
type IdentityClient struct {
	up *Upstream
}

// NewIdentityClient creates a new IdentityClient.
func NewIdentityClient(up *Upstream) *IdentityClient {
	return &IdentityClient{up: up}
}

// GetUser fetches and converts the user's profile. A 404 yields
// *domain.ErrNotFound.
func (c *IdentityClient) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	raw, err := c.up.call(ctx, "identity", http.MethodGet, "/api/user", url.Values{"id": {userID}}, nil)
	if err != nil {
		return nil, err
	}

	// Some deployments wrap the user in {success, data}.
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && len(bytes.TrimSpace(env.Data)) > 0 && env.Data[0] == '{' {
		raw = env.Data
	}

	var u domain.UpstreamUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &domain.ErrExternalService{Service: "identity", Err: fmt.Errorf("decode user: %w", err)}
	}
	return u.ToProfile(), nil
}
