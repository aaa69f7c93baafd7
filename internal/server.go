package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/giannis84/tunelib/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// RoutesRegistry is a function that registers routes on a chi.Router
type RoutesRegistry func(r chi.Router)

// ServiceConfig describes one HTTP service. Zero timeouts fall back to defaults.
type ServiceConfig struct {
	Name         string
	Addr         string
	Logger       *slog.Logger
	Routes       RoutesRegistry
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Service wraps an HTTP server with its router
type Service struct {
	Name       string
	Logger     *slog.Logger
	HTTPServer *http.Server
	Router     *chi.Mux
}

// NewService builds the router with the common middleware and the HTTP server around it.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if cfg.Routes != nil {
		cfg.Routes(router)
	}

	return &Service{
		Name:   cfg.Name,
		Logger: logger,
		Router: router,
		HTTPServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  orDefault(cfg.ReadTimeout, defaultReadTimeout),
			WriteTimeout: orDefault(cfg.WriteTimeout, defaultWriteTimeout),
			IdleTimeout:  orDefault(cfg.IdleTimeout, defaultIdleTimeout),
		},
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}

// ListenAndServe starts the http service. It returns nil once Shutdown has been called.
func (s *Service) ListenAndServe() error {
	s.Logger.Info("starting http service", slog.String("service", s.Name), slog.String("addr", s.HTTPServer.Addr))
	if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Service) Shutdown(ctx context.Context) error {
	s.Logger.Info("stopping http service", slog.String("service", s.Name))
	return s.HTTPServer.Shutdown(ctx)
}
