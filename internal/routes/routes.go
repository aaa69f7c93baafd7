package routes

import (
	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/config"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// Store is the persistence behind the API.
type Store interface {
	handlers.AccountStore
	database.LibraryRepository
}

// RegisterAPIRoutes sets up the /api routes.
// HTTP concerns are handled here, while business logic is delegated to the handlers package.
func RegisterAPIRoutes(store Store, authCfg auth.AuthConfig, rateLimit config.RateLimitConfig) func(r chi.Router) {
	issuer := auth.NewIssuer(authCfg)

	return func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Use(requireJSONAccept)
			r.Use(requireJSONContentType)
			if limiter := rateLimiter(rateLimit); limiter != nil {
				r.Use(limiter)
			}

			r.Post("/auth/register", registerRoute(store, issuer))
			r.Post("/auth/login", loginRoute(store, issuer))

			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware(authCfg, store))

				r.Post("/auth/logout", logoutRoute(store))

				r.Route("/user", func(r chi.Router) {
					r.Get("/", getProfileRoute(store))
					r.Delete("/", deleteAccountRoute(store))
					r.Put("/password", updatePasswordRoute(store))
				})

				r.Route("/library", func(r chi.Router) {
					r.Get("/", getLibraryRoute(store))
					r.Post("/", addToLibraryRoute(store))
					r.Get("/check/{trackRef}", checkLibraryRoute(store))
					r.Get("/track/{trackRef}", getLibraryEntryRoute(store))
					r.Delete("/{trackRef}", removeFromLibraryRoute(store))
				})
			})
		})
	}
}
