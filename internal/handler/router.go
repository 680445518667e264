package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the use cases the router exposes.
type Services struct {
	Dashboard *service.Dashboard
	Calendar  *service.Calendar
	Callbacks *service.Callbacks
	Workspace *service.Workspace
	Mutations *service.Mutations
	Clock     port.Clock
}

// Options configure the router's outer middleware and health checks.
type Options struct {
	CORSOrigins []string
	RateLimit   string
	Checks      map[string]Pinger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) (http.Handler, error) {
	limit, err := RateLimitMiddleware(opts.RateLimit, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(CORSMiddleware(opts.CORSOrigins))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(opts.Checks, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	loc := time.UTC
	if svc.Dashboard != nil {
		loc = svc.Dashboard.Location()
	}
	r.Route("/v1", func(r chi.Router) {
		r.Use(limit)

		// Long-lived countdown stream, outside the request timeout.
		r.Get("/timer/stream", timerStreamHandler(svc.Clock, loc, logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/metrics/summary", metricsSummaryHandler(metrics))

			// Identity and list views
			r.Get("/profile", profileHandler(svc.Dashboard, logger))
			r.Get("/accounts", accountsHandler(svc.Dashboard, logger))
			r.Get("/activities", activitiesHandler(svc.Dashboard, logger))
			r.Get("/calls", callsHandler(svc.Dashboard, logger))
			r.Get("/callbacks", callbacksHandler(svc.Dashboard, logger))
			r.Get("/companies/summary", companySummaryHandler(svc.Dashboard, logger))
			r.Get("/companies/suggest", suggestCompaniesHandler(svc.Dashboard, logger))

			// Calendar
			r.Get("/calendar", calendarHandler(svc.Calendar, logger))
			r.Get("/calendar/weeks", weeklyBreakdownHandler(svc.Calendar, logger))

			// Callback notifications
			r.Get("/notifications", notificationsHandler(svc.Callbacks, logger))
			r.Post("/notifications/{activityId}/dismiss", dismissHandler(svc.Callbacks, logger))

			// Per-user workspace
			r.Get("/templates", listTemplatesHandler(svc.Workspace, logger))
			r.Post("/templates", saveTemplateHandler(svc.Workspace, logger))
			r.Delete("/templates/{templateId}", deleteTemplateHandler(svc.Workspace, logger))
			r.Get("/drafts/{form}", getDraftHandler(svc.Workspace, logger))
			r.Put("/drafts/{form}", saveDraftHandler(svc.Workspace, logger))
			r.Delete("/drafts/{form}", clearDraftHandler(svc.Workspace, logger))

			// Activity mutations
			r.Post("/activities", createActivityHandler(svc.Mutations, logger))
			r.Put("/activities/{activityId}/status", updateStatusHandler(svc.Mutations, logger))
			r.Delete("/activities/{activityId}", deleteActivityHandler(svc.Mutations, logger))

			// Timers
			r.Get("/timer/end", timerEndHandler(loc, logger))
			r.Get("/timer/progress", timerProgressHandler(svc.Clock, loc, logger))
		})
	})

	return r, nil
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(checks map[string]Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		overall := "healthy"
		for _, name := range names {
			p := checks[name]
			start := time.Now()
			status := "healthy"
			if err := p.Ping(ctx); err != nil {
				logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				status = "degraded"
				overall = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        name,
				Status:      status,
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			})
		}

		code := http.StatusOK
		if overall != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Summary())
	}
}
