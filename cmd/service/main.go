package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giannis84/tunelib/internal"
	"github.com/giannis84/tunelib/internal/config"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := logging.NewLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	if cfg.LogLevel != "" {
		logger = logging.NewLogger(cfg.LogLevel)
	}
	logger.Info("configuration loaded",
		slog.String("api_addr", cfg.APIAddr()),
		slog.String("health_addr", cfg.HealthAddr()),
		slog.Duration("token_ttl", cfg.TokenTTL),
		slog.Int("rate_limit_requests", cfg.RateLimitRequests),
	)

	// Connect to PostgreSQL and initialise schema
	db, err := database.Connect(cfg.PostgresConnString())
	if err != nil {
		logger.Error("failed to initialise database", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database ready")

	repo := database.NewPostgresRepository(db)

	healthService := internal.NewService(internal.ServiceConfig{
		Name:   "health",
		Addr:   cfg.HealthAddr(),
		Logger: logger,
		Routes: routes.RegisterHealthRoutes(db),
	})
	apiService := internal.NewService(internal.ServiceConfig{
		Name:         "api",
		Addr:         cfg.APIAddr(),
		Logger:       logger,
		Routes:       routes.RegisterAPIRoutes(repo, cfg.AuthConfig(), cfg.RateLimitConfig()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	errCh := make(chan error, 2)
	for _, svc := range []*internal.Service{healthService, apiService} {
		go func() {
			if err := svc.ListenAndServe(); err != nil {
				logger.Error("http service failed", slog.String("service", svc.Name), slog.String(logging.ErrorKey, err.Error()))
				errCh <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("shutting down service", slog.String("signal", sig.String()))
	case <-errCh:
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiService.Shutdown(ctx); err != nil {
		logger.Error("API service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	if err := healthService.Shutdown(ctx); err != nil {
		logger.Error("health service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	logger.Info("exiting...")

	if exitCode != 0 {
		cancel()
		db.Close()
		os.Exit(exitCode)
	}
}
