package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// userID is the viewing user, passed by the dashboard as ?id=.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("id"))
}

// query reads the shared filter-bar parameters of the list endpoints.
func query(r *http.Request) service.Query {
	q := r.URL.Query()
	return service.Query{
		UserID: userID(r),
		Filters: domain.FilterState{
			SearchTerm: q.Get("q"),
			ClientType: q.Get("clientType"),
			Status:     q.Get("status"),
			StartDate:  q.Get("start"),
			EndDate:    q.Get("end"),
		},
		Preset: q.Get("preset"),
	}
}

// intParam parses an optional non-negative integer parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &domain.ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var missing *domain.ErrMissingIdentity
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var forbidden *domain.ErrForbidden
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &missing):
		logger.Debug("missing identity", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: validation.Field})
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream service error")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
