package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/clock"
	"github.com/boddenberg/taskflow-bfa-go/internal/config"
	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/handler"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/cache"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/client"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/kvstore"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/messaging"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/observability"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/taskflow-bfa-go/internal/notify"
	"github.com/boddenberg/taskflow-bfa-go/internal/port"
	"github.com/boddenberg/taskflow-bfa-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "taskflow-bfa"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the callback notifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	// --- Load .env files (for local development) ---
	if _, err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		return err
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("upstream", cfg.Upstream.URL),
		zap.Bool("signed_upstream", cfg.Upstream.SigningKey != ""),
		zap.Duration("http_timeout", cfg.Upstream.HTTPTimeout),
		zap.Int("max_retries", cfg.Upstream.MaxRetries),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("kv_backend", cfg.Store.Backend),
		zap.String("timezone", cfg.Location().String()),
		zap.Int("notify_users", len(cfg.Notify.Users)),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	profiles := cache.New[*domain.UserProfile](cfg.CacheTTL)
	defer profiles.Close()

	// --- Upstream clients ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.Upstream.MaxRetries,
		InitialBackoff: cfg.Upstream.InitialBackoff,
		MaxConcurrency: cfg.Upstream.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("upstream", client.IsBenign)
	upstream := client.NewUpstream(
		&http.Client{Timeout: cfg.Upstream.HTTPTimeout},
		cfg.Upstream.URL,
		cb,
		resilienceCfg,
		client.NewTokenSigner(cfg.Upstream.SigningKey, serviceName),
	)
	records := client.NewRecordsClient(upstream)

	// --- Key/value store ---
	store, err := kvstore.Open(ctx, kvstore.Options{
		Backend:       cfg.Store.Backend,
		RedisAddr:     cfg.Store.RedisAddr,
		RedisPassword: cfg.Store.RedisPassword,
		RedisDB:       cfg.Store.RedisDB,
		SQLitePath:    cfg.Store.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer store.Close()

	// --- Event publisher ---
	var publisher port.Publisher
	if cfg.Notify.KafkaBrokers != "" {
		publisher = messaging.NewKafkaProducer(cfg.Notify.KafkaBrokers, cfg.Notify.CallbackTopic, logger)
		logger.Info("publishing callback events to kafka", zap.String("topic", cfg.Notify.CallbackTopic))
	} else {
		publisher = messaging.NewLogPublisher(logger)
		logger.Warn("KAFKA_BROKERS not set, callback events go to the log")
	}
	defer publisher.Close()

	// --- Services ---
	clk := clock.Real{}
	validate := service.NewValidator()
	dashboard := service.NewDashboard(client.NewIdentityClient(upstream), records, records, profiles, clk, cfg.Location(), metrics, logger)
	callbacks := service.NewCallbacks(dashboard, notify.NewDismissedStore(store), logger)

	// --- Notifier ---
	if len(cfg.Notify.Users) > 0 {
		poller := notify.NewPoller(callbacks, publisher, clk, cfg.Notify.PollInterval, cfg.Notify.Users, metrics, logger)
		poller.Start(ctx)
		defer poller.Stop()
		logger.Info("callback notifier started", zap.Duration("interval", cfg.Notify.PollInterval))
	}

	// --- Router ---
	checks := map[string]handler.Pinger{}
	if p, ok := store.(handler.Pinger); ok {
		checks["kvstore"] = p
	}
	router, err := handler.NewRouter(handler.Services{
		Dashboard: dashboard,
		Calendar:  service.NewCalendar(dashboard),
		Callbacks: callbacks,
		Workspace: service.NewWorkspace(store, clk, validate),
		Mutations: service.NewMutations(dashboard, client.NewMutationClient(upstream), validate, logger),
		Clock:     clk,
	}, handler.Options{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		Checks:      checks,
	}, metrics, logger)
	if err != nil {
		return err
	}

	// --- Server ---
	// No WriteTimeout: the countdown stream is long-lived. Other routes are
	// bounded by the router's request timeout. Request contexts derive from
	// ctx so open streams end on shutdown.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful shutdown ---
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
