package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per client IP with an in-memory
// store. rate uses the limiter format, e.g. "300-M" (300 per minute). An
// empty rate disables limiting.
func RateLimitMiddleware(rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", rate, err)
	}

	mw := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), r),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("rate limit reached",
				zap.String("path", req.URL.Path),
				zap.String("remote_addr", req.RemoteAddr),
			)
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
	return mw.Handler, nil
}

// CORSMiddleware allows the dashboard origins to call the API.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "Traceparent"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Ratelimit-Limit", "X-Ratelimit-Remaining", "X-Ratelimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
