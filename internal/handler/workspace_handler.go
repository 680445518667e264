package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Templates
// ============================================================

func listTemplatesHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Templates(r.Context(), userID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"templates": list})
	}
}

func saveTemplateHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t domain.ActivityTemplate
		if err := decodeBody(r, &t); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		saved, err := svc.SaveTemplate(r.Context(), userID(r), t)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func deleteTemplateHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteTemplate(r.Context(), userID(r), chi.URLParam(r, "templateId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Drafts
// ============================================================

func getDraftHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Draft(r.Context(), userID(r), chi.URLParam(r, "form"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// saveDraftHandler stores the request body as the form's draft values.
func saveDraftHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "body", Message: "unreadable"}, logger)
			return
		}
		d, err := svc.SaveDraft(r.Context(), userID(r), chi.URLParam(r, "form"), json.RawMessage(raw))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func clearDraftHandler(svc *service.Workspace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearDraft(r.Context(), userID(r), chi.URLParam(r, "form")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
