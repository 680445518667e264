package handler

import (
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Activity mutations
// ============================================================

func createActivityHandler(svc *service.Mutations, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.ActivityInput
		if err := decodeBody(r, &in); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		res, err := svc.CreateActivity(r.Context(), userID(r), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func updateStatusHandler(svc *service.Mutations, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var change domain.StatusChange
		if err := decodeBody(r, &change); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		res, err := svc.UpdateActivityStatus(r.Context(), userID(r), chi.URLParam(r, "activityId"), change)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func deleteActivityHandler(svc *service.Mutations, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.DeleteActivity(r.Context(), userID(r), chi.URLParam(r, "activityId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
