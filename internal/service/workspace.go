package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	templatePrefix = "template:"
	draftPrefix    = "draft:"
)

// Workspace keeps a user's saved activity templates and form drafts in the
// key/value store, under the user's namespace.
type Workspace struct {
	kv       port.KeyValueStore
	clock    port.Clock
	validate *validator.Validate
}

// NewWorkspace creates the workspace service.
func NewWorkspace(kv port.KeyValueStore, clk port.Clock, validate *validator.Validate) *Workspace {
	return &Workspace{kv: kv, clock: clk, validate: validate}
}

func namespace(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", &domain.ErrMissingIdentity{}
	}
	return port.UserNamespace(userID), nil
}

// Templates lists the user's templates, newest first.
func (w *Workspace) Templates(ctx context.Context, userID string) ([]domain.ActivityTemplate, error) {
	ns, err := namespace(userID)
	if err != nil {
		return nil, err
	}
	keys, err := w.kv.Keys(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	out := []domain.ActivityTemplate{}
	for _, k := range keys {
		if !strings.HasPrefix(k, templatePrefix) {
			continue
		}
		raw, ok, err := w.kv.Get(ctx, ns, k)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		var t domain.ActivityTemplate
		if !ok || json.Unmarshal(raw, &t) != nil {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b domain.ActivityTemplate) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// SaveTemplate validates and stores a template under a fresh id.
func (w *Workspace) SaveTemplate(ctx context.Context, userID string, t domain.ActivityTemplate) (*domain.ActivityTemplate, error) {
	ns, err := namespace(userID)
	if err != nil {
		return nil, err
	}
	if err := w.validate.Struct(t); err != nil {
		return nil, validationError(err)
	}

	t.ID = uuid.NewString()
	t.CreatedAt = w.clock.Now().UTC()
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	if err := w.kv.Set(ctx, ns, templatePrefix+t.ID, raw); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return &t, nil
}

// DeleteTemplate removes a template; unknown ids are *domain.ErrNotFound.
func (w *Workspace) DeleteTemplate(ctx context.Context, userID, templateID string) error {
	ns, err := namespace(userID)
	if err != nil {
		return err
	}
	key := templatePrefix + templateID
	_, ok, err := w.kv.Get(ctx, ns, key)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if !ok {
		return &domain.ErrNotFound{Resource: "template", ID: templateID}
	}
	return w.kv.Delete(ctx, ns, key)
}

func (w *Workspace) checkForm(form string) error {
	if err := w.validate.Var(form, "required,max=64,excludesall=:/ "); err != nil {
		return &domain.ErrValidation{Field: "form", Message: "invalid form name"}
	}
	return nil
}

// Draft returns the saved draft of form.
func (w *Workspace) Draft(ctx context.Context, userID, form string) (*domain.Draft, error) {
	ns, err := namespace(userID)
	if err != nil {
		return nil, err
	}
	if err := w.checkForm(form); err != nil {
		return nil, err
	}
	raw, ok, err := w.kv.Get(ctx, ns, draftPrefix+form)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "draft", ID: form}
	}
	var d domain.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &domain.ErrNotFound{Resource: "draft", ID: form}
	}
	return &d, nil
}

// SaveDraft replaces the draft of form. values must be a JSON object.
func (w *Workspace) SaveDraft(ctx context.Context, userID, form string, values json.RawMessage) (*domain.Draft, error) {
	ns, err := namespace(userID)
	if err != nil {
		return nil, err
	}
	if err := w.checkForm(form); err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(values, &obj); err != nil || obj == nil {
		return nil, &domain.ErrValidation{Field: "values", Message: "must be a JSON object"}
	}

	d := domain.Draft{Form: form, Values: values, UpdatedAt: w.clock.Now().UTC()}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	if err := w.kv.Set(ctx, ns, draftPrefix+form, raw); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return &d, nil
}

// ClearDraft removes the draft of form. Clearing a missing draft is fine.
func (w *Workspace) ClearDraft(ctx context.Context, userID, form string) error {
	ns, err := namespace(userID)
	if err != nil {
		return err
	}
	if err := w.checkForm(form); err != nil {
		return err
	}
	return w.kv.Delete(ctx, ns, draftPrefix+form)
}
