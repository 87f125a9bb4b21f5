package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	"github.com/SscSPs/gestion_caisse/internal/core/services"
	"github.com/SscSPs/gestion_caisse/internal/handlers"
	"github.com/SscSPs/gestion_caisse/internal/middleware"
	"github.com/SscSPs/gestion_caisse/internal/platform/config"
	"github.com/SscSPs/gestion_caisse/internal/platform/metrics"
	"github.com/SscSPs/gestion_caisse/internal/repositories/database/pgsql"
	"github.com/SscSPs/gestion_caisse/internal/repositories/memory"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/SscSPs/gestion_caisse/pkg/database"
	pkgredis "github.com/SscSPs/gestion_caisse/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/multierr"
)

// @title Gestion Caisse API
// @version 1.0
// @description Petty-cash ledger: deposits, withdrawals, approvals and audit history.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// run wires the process and blocks until ctx is canceled or the server fails.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	var redisClient *pkgredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkgredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, redisClient.Close)
		logger.Info("Redis connection established.")
	} else {
		logger.Warn("REDIS_URL not set; idempotency keys are ignored and rate limits are per instance.")
	}

	loginLimiter, err := newLimiter(cfg.LoginRateLimit, redisClient, "caisse:limiter:login")
	if err != nil {
		return err
	}
	apiLimiter, err := newLimiter(cfg.APIRateLimit, redisClient, "caisse:limiter:api")
	if err != nil {
		return err
	}

	var ledgerMetrics *metrics.LedgerMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		ledgerMetrics = metrics.NewLedgerMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	closers = append(closers, posthogClient.Close)

	serviceContainer := services.NewServiceContainer(cfg, repos, ledgerMetrics)

	if cfg.BootstrapAdminEmail != "" {
		admin, err := serviceContainer.User.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		logger.Info("Bootstrap admin ready", slog.String("user_id", admin.UserID))
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	opts := handlers.RouteOptions{
		LoginLimiter:   loginLimiter,
		APILimiter:     apiLimiter,
		MetricsHandler: metricsHandler,
		Posthog:        posthogClient,
	}
	if redisClient != nil {
		opts.IdempotencyStore = redisClient
	}
	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, opts); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed to run: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStore selects the ledger store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func() error, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using the in-memory store; data is lost on restart.")
		return memory.NewRepositoryProvider(), func() error { return nil }, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			dbPool.Close()
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	return pgsql.NewRepositoryProvider(dbPool), func() error {
		dbPool.Close()
		return nil
	}, nil
}

// newLimiter builds a limiter for a formatted rate ("5-M"), shared through redis when available.
func newLimiter(formatted string, redisClient *pkgredis.Client, prefix string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	if redisClient == nil {
		return limiter.New(memorystore.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix}), rate), nil
	}

	store, err := redisstore.NewStoreWithOptions(redisClient.Raw(), limiter.StoreOptions{Prefix: prefix, MaxRetry: 3})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return limiter.New(store, rate), nil
}
