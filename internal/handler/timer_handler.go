package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"

	"go.uber.org/zap"
)

// ============================================================
// Activity timers
// ============================================================

func timeParam(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	ts := domain.ParseTimestamp(r.URL.Query().Get(name), loc)
	if !ts.Valid {
		return time.Time{}, &domain.ErrValidation{Field: name, Message: "must be a date or datetime"}
	}
	return ts.Time, nil
}

// timerEndHandler derives an activity's end from its start and duration
// label.
func timerEndHandler(loc *time.Location, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := timeParam(r, "start", loc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		label := r.URL.Query().Get("duration")
		if _, ok := timewindow.LookupDuration(label); !ok {
			handleServiceError(w, &domain.ErrValidation{Field: "duration", Message: "unknown duration"}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"start":    start.Format(domain.LocalLayout),
			"duration": label,
			"end":      timewindow.DurationToEnd(start, label).Format(domain.LocalLayout),
		})
	}
}

type countdownResponse struct {
	RemainingSeconds int64  `json:"remainingSeconds"`
	Remaining        string `json:"remaining"`
	Reached          bool   `json:"reached"`
}

func newCountdownResponse(c timewindow.Countdown) countdownResponse {
	return countdownResponse{RemainingSeconds: c.Remaining, Remaining: c.String(), Reached: c.Reached}
}

type progressResponse struct {
	Progress float64 `json:"progress"`
	countdownResponse
}

// timerProgressHandler reports how far now is through [start, end] and the
// countdown to end.
func timerProgressHandler(clk port.Clock, loc *time.Location, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := timeParam(r, "start", loc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		end, err := timeParam(r, "end", loc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		now := clk.Now()
		writeJSON(w, http.StatusOK, progressResponse{
			Progress:          timewindow.ProgressRatio(start, end, now),
			countdownResponse: newCountdownResponse(timewindow.LiveCountdown(end, now)),
		})
	}
}

// timerStreamHandler streams the countdown to ?target= as server-sent
// events, one "countdown" event per second, ending once the target is
// reached or the client goes away.
func timerStreamHandler(clk port.Clock, loc *time.Location, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := timeParam(r, "target", loc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		var writeErr error
		err = timewindow.Watch(r.Context(), clk, target, func(c timewindow.Countdown) {
			if writeErr != nil {
				return
			}
			payload, _ := json.Marshal(newCountdownResponse(c))
			if _, writeErr = fmt.Fprintf(w, "event: countdown\ndata: %s\n\n", payload); writeErr == nil {
				flusher.Flush()
			}
		})
		if err != nil {
			logger.Debug("countdown stream closed", zap.Error(err))
			return
		}
		if writeErr == nil {
			fmt.Fprint(w, "event: done\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
