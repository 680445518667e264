package handler

import (
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Callback notifications
// ============================================================

func notificationsHandler(svc *service.Callbacks, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), userID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func dismissHandler(svc *service.Callbacks, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID := chi.URLParam(r, "activityId")
		if err := svc.Dismiss(r.Context(), userID(r), activityID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"activityId": activityID,
			"state":      "dismissed",
		})
	}
}
