package handler

import (
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Identity and list views
// ============================================================

func profileHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		profile, err := svc.ResolveProfile(ctx, userID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func accountsHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Accounts(r.Context(), query(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func activitiesHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Activities(r.Context(), query(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func callsHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Calls(r.Context(), query(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func callbacksHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Callbacks(r.Context(), query(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func companySummaryHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aggs, notices, err := svc.CompanySummary(r.Context(), query(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"companies": aggs,
			"notices":   notices,
		})
	}
}

func suggestCompaniesHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r, "limit", 10)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		names, err := svc.SuggestCompanies(r.Context(), userID(r), r.URL.Query().Get("q"), limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": names})
	}
}
