package handler

import (
	"net/http"

	"github.com/boddenberg/taskflow-bfa-go/internal/service"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"

	"go.uber.org/zap"
)

func calendarHandler(svc *service.Calendar, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		win, err := svc.Window(r.Context(), service.CalendarQuery{
			UserID: userID(r),
			Cursor: q.Get("cursor"),
			Mode:   timewindow.ParseViewMode(q.Get("mode")),
			Field:  q.Get("field"),
			Search: q.Get("q"),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, win)
	}
}

func weeklyBreakdownHandler(svc *service.Calendar, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.WeeklyBreakdown(r.Context(), userID(r), r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
