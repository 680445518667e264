package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/clock"
	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/kvstore"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace() (*service.Workspace, *clock.Fake) {
	clk := clock.NewFake(now)
	return service.NewWorkspace(kvstore.NewMemory(), clk, service.NewValidator()), clk
}

func TestWorkspace_Templates(t *testing.T) {
	ws, clk := newWorkspace()
	ctx := context.Background()

	first, err := ws.SaveTemplate(ctx, "u-a", domain.ActivityTemplate{Name: "Cold call", TypeActivity: "Outbound Call", ActivityStatus: "Cold"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, now, first.CreatedAt)

	clk.Advance(time.Minute)
	second, err := ws.SaveTemplate(ctx, "u-a", domain.ActivityTemplate{Name: "Visit", TypeActivity: "Client Visit", Duration: "1 Hour"})
	require.NoError(t, err)

	list, err := ws.Templates(ctx, "u-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	other, err := ws.Templates(ctx, "u-b")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, ws.DeleteTemplate(ctx, "u-a", first.ID))
	var nf *domain.ErrNotFound
	assert.ErrorAs(t, ws.DeleteTemplate(ctx, "u-a", first.ID), &nf)

	list, err = ws.Templates(ctx, "u-a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkspace_TemplateValidation(t *testing.T) {
	ws, _ := newWorkspace()
	ctx := context.Background()

	tests := []struct {
		name  string
		tmpl  domain.ActivityTemplate
		field string
	}{
		{"missing name", domain.ActivityTemplate{TypeActivity: "Email"}, "name"},
		{"missing type", domain.ActivityTemplate{Name: "x"}, "typeactivity"},
		{"bad status", domain.ActivityTemplate{Name: "x", TypeActivity: "Email", ActivityStatus: "Lukewarm"}, "activitystatus"},
		{"bad duration", domain.ActivityTemplate{Name: "x", TypeActivity: "Email", Duration: "4 Hours"}, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.SaveTemplate(ctx, "u-a", tt.tmpl)
			var verr *domain.ErrValidation
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := ws.SaveTemplate(ctx, "", domain.ActivityTemplate{Name: "x", TypeActivity: "Email"})
	var missing *domain.ErrMissingIdentity
	assert.ErrorAs(t, err, &missing)
}

func TestWorkspace_Drafts(t *testing.T) {
	ws, _ := newWorkspace()
	ctx := context.Background()

	_, err := ws.Draft(ctx, "u-a", "activity")
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)

	saved, err := ws.SaveDraft(ctx, "u-a", "activity", json.RawMessage(`{"companyname":"Acme"}`))
	require.NoError(t, err)
	assert.Equal(t, now, saved.UpdatedAt)

	got, err := ws.Draft(ctx, "u-a", "activity")
	require.NoError(t, err)
	assert.JSONEq(t, `{"companyname":"Acme"}`, string(got.Values))

	require.NoError(t, ws.ClearDraft(ctx, "u-a", "activity"))
	require.NoError(t, ws.ClearDraft(ctx, "u-a", "activity"))
	_, err = ws.Draft(ctx, "u-a", "activity")
	assert.ErrorAs(t, err, &nf)
}

func TestWorkspace_DraftValidation(t *testing.T) {
	ws, _ := newWorkspace()
	ctx := context.Background()

	for _, values := range []string{`[1,2]`, `"text"`, `null`, `{broken`} {
		_, err := ws.SaveDraft(ctx, "u-a", "activity", json.RawMessage(values))
		var verr *domain.ErrValidation
		assert.ErrorAs(t, err, &verr, values)
	}

	for _, form := range []string{"", "a/b", "with space", "x:y"} {
		_, err := ws.SaveDraft(ctx, "u-a", form, json.RawMessage(`{}`))
		var verr *domain.ErrValidation
		assert.ErrorAs(t, err, &verr, form)
	}
}
