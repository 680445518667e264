package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// Mutation endpoints of the ModuleSales API.
const (
	CreateActivityPath = "/api/ModuleSales/Task/DailyActivity/AddActivity"
	UpdateStatusPath   = "/api/ModuleSales/Task/DailyActivity/UpdateActivityStatus"
	DeleteActivityPath = "/api/ModuleSales/Task/DailyActivity/DeleteActivity"
)

// MutationClient issues activity create/update/delete calls.
type MutationClient struct {
	up *Upstream
}

// NewMutationClient creates a new MutationClient.
func NewMutationClient(up *Upstream) *MutationClient {
	return &MutationClient{up: up}
}

// CreateActivity posts a new activity.
func (c *MutationClient) CreateActivity(ctx context.Context, in *domain.ActivityInput) (*domain.MutationResult, error) {
	return c.mutate(ctx, http.MethodPost, CreateActivityPath, in)
}

// UpdateActivityStatus changes an activity's status.
func (c *MutationClient) UpdateActivityStatus(ctx context.Context, activityID string, change *domain.StatusChange) (*domain.MutationResult, error) {
	body := struct {
		ID string `json:"id"`
		*domain.StatusChange
	}{ID: activityID, StatusChange: change}
	return c.mutate(ctx, http.MethodPut, UpdateStatusPath, body)
}

// DeleteActivity removes an activity.
func (c *MutationClient) DeleteActivity(ctx context.Context, activityID string) (*domain.MutationResult, error) {
	return c.mutate(ctx, http.MethodDelete, DeleteActivityPath, map[string]string{"id": activityID})
}

// mutate sends body and checks the acknowledgement. An empty 2xx body
// counts as success; an explicit success:false is an upstream failure.
func (c *MutationClient) mutate(ctx context.Context, method, path string, body any) (*domain.MutationResult, error) {
	raw, err := c.up.call(ctx, "mutations", method, path, nil, body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &domain.MutationResult{Success: true}, nil
	}

	var ack struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		// Non-JSON 2xx bodies are plain acknowledgements.
		return &domain.MutationResult{Success: true, Message: snippet(raw)}, nil
	}
	if ack.Success != nil && !*ack.Success {
		return nil, &domain.ErrExternalService{
			Service: "mutations",
			Err:     fmt.Errorf("upstream rejected %s %s: %s", method, path, firstNonEmpty(ack.Message, ack.Error, "no message")),
		}
	}
	return &domain.MutationResult{Success: true, Message: ack.Message, Data: ack.Data}, nil
}
