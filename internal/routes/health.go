package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/go-chi/chi/v5"
)

const readinessTimeout = 2 * time.Second

// RegisterHealthRoutes mounts the liveness and readiness probes. Readiness pings the database.
func RegisterHealthRoutes(db database.Pinger) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			writePlain(w, http.StatusOK, "OK")
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := ping(r.Context(), db); err != nil {
				logging.Log(r.Context()).Layer("routes").Op("ready").Err(err).Warn("readiness check failed")
				writePlain(w, http.StatusServiceUnavailable, "database not ready")
				return
			}
			writePlain(w, http.StatusOK, "Ready")
		})
	}
}

func ping(ctx context.Context, db database.Pinger) error {
	if db == nil {
		return errors.New("no database configured")
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return db.PingContext(ctx)
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
