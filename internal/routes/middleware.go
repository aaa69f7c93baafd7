package routes

import (
	"mime"
	"net/http"
	"strings"

	"github.com/giannis84/tunelib/internal/config"
	"github.com/go-chi/httprate"
)

// requireJSONAccept rejects clients that cannot take a JSON response.
func requireJSONAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Get("Accept")) {
			respondWithError(w, http.StatusNotAcceptable, "Accept header must include application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func acceptsJSON(header string) bool {
	for _, part := range strings.Split(header, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}

// requireJSONContentType rejects POST, PUT and PATCH bodies that are not JSON.
// Body-less requests (e.g. logout) pass through.
func requireJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength == 0 {
				break
			}
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				respondWithError(w, http.StatusUnsupportedMediaType, "Content-Type header must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimiter returns a per-IP limiter, or nil when limiting is disabled.
func rateLimiter(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return nil
	}
	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}
