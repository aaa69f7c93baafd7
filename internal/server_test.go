package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giannis84/tunelib/internal/logging"
	"github.com/go-chi/chi/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewService_Timeouts(t *testing.T) {
	tests := []struct {
		name  string
		cfg   ServiceConfig
		read  time.Duration
		write time.Duration
		idle  time.Duration
	}{
		{
			name:  "defaults",
			cfg:   ServiceConfig{Addr: ":8080"},
			read:  defaultReadTimeout,
			write: defaultWriteTimeout,
			idle:  defaultIdleTimeout,
		},
		{
			name:  "configured",
			cfg:   ServiceConfig{Addr: ":8080", ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 30 * time.Second},
			read:  5 * time.Second,
			write: 10 * time.Second,
			idle:  30 * time.Second,
		},
		{
			name:  "only read configured",
			cfg:   ServiceConfig{Addr: ":8080", ReadTimeout: 3 * time.Second},
			read:  3 * time.Second,
			write: defaultWriteTimeout,
			idle:  defaultIdleTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = testLogger()
			srv := NewService(tt.cfg).HTTPServer

			got := [3]time.Duration{srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout}
			want := [3]time.Duration{tt.read, tt.write, tt.idle}
			if got != want {
				t.Errorf("timeouts (read, write, idle) = %v, want %v", got, want)
			}
			if srv.Addr != tt.cfg.Addr {
				t.Errorf("Addr = %q, want %q", srv.Addr, tt.cfg.Addr)
			}
		})
	}
}

func TestNewService_Middleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	svc := NewService(ServiceConfig{
		Name:   "api",
		Addr:   ":0",
		Logger: logger,
		Routes: func(r chi.Router) {
			r.Get("/log", func(w http.ResponseWriter, r *http.Request) {
				logging.Log(r.Context()).Layer("test").Info("handled")
				w.WriteHeader(http.StatusNoContent)
			})
			r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			})
		},
	})

	if svc.HTTPServer.Handler != svc.Router {
		t.Fatal("HTTPServer.Handler should be the router")
	}

	t.Run("request logger carries request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		svc.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/log", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
		}
		if line["request_id"] == nil || line["request_id"] == "" {
			t.Errorf("request_id missing from %v", line)
		}
		if line["path"] != "/log" || line["layer"] != "test" {
			t.Errorf("unexpected attributes %v", line)
		}
	})

	t.Run("panics are recovered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestNewService_NilLoggerFallsBackToDefault(t *testing.T) {
	svc := NewService(ServiceConfig{Addr: ":0"})
	if svc.Logger == nil {
		t.Fatal("expected a logger")
	}
}

func TestService_ShutdownBeforeServe(t *testing.T) {
	svc := NewService(ServiceConfig{Name: "api", Addr: "127.0.0.1:0", Logger: testLogger()})
	if err := svc.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := svc.ListenAndServe(); err != nil {
		t.Errorf("ListenAndServe after Shutdown = %v, want nil", err)
	}
}
