package routes

import (
	"net/http"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/handlers"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/models"
)

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

func registerRoute(store handlers.AccountStore, issuer *auth.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req handlers.RegisterRequest
		if !decodeBody(w, r, "register", &req) {
			return
		}

		session, err := handlers.Register(r.Context(), store, issuer, req)
		if err != nil {
			respondWithHandlerError(w, r, "register", err, "")
			return
		}

		respondWithJSON(w, http.StatusCreated, SessionResponse{
			Message: "Profile created successfully",
			Token:   session.Token,
			Profile: session.Profile,
		})
	}
}

func loginRoute(store handlers.AccountStore, issuer *auth.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req handlers.LoginRequest
		if !decodeBody(w, r, "login", &req) {
			return
		}

		session, err := handlers.Login(r.Context(), store, issuer, req)
		if err != nil {
			respondWithHandlerError(w, r, "login", err, "")
			return
		}

		logging.Log(r.Context()).Layer("routes").Op("login").User(session.Profile.ID).
			Int("status_code", http.StatusOK).Info("login successful")
		respondWithJSON(w, http.StatusOK, SessionResponse{
			Message: "Login successful",
			Token:   session.Token,
			Profile: session.Profile,
		})
	}
}

func logoutRoute(store handlers.AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := handlers.Logout(ctx, store, auth.TokenIDFromContext(ctx)); err != nil {
			respondWithHandlerError(w, r, "logout", err, "")
			return
		}
		logging.Log(ctx).Layer("routes").Op("logout").User(auth.UserIDFromContext(ctx)).Info("token revoked")
		respondWithMessage(w, http.StatusOK, "Logged out successfully")
	}
}

func getProfileRoute(store handlers.AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		profile, err := handlers.GetProfile(ctx, store, auth.UserIDFromContext(ctx))
		if err != nil {
			respondWithHandlerError(w, r, "getProfile", err, "")
			return
		}
		respondWithJSON(w, http.StatusOK, profile)
	}
}

func updatePasswordRoute(store handlers.AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req handlers.UpdatePasswordRequest
		if !decodeBody(w, r, "updatePassword", &req) {
			return
		}

		ctx := r.Context()
		if err := handlers.UpdatePassword(ctx, store, auth.UserIDFromContext(ctx), req); err != nil {
			respondWithHandlerError(w, r, "updatePassword", err, "")
			return
		}
		respondWithMessage(w, http.StatusOK, "Password updated successfully")
	}
}

func deleteAccountRoute(store handlers.AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req handlers.DeleteAccountRequest
		if !decodeBody(w, r, "deleteAccount", &req) {
			return
		}

		ctx := r.Context()
		if err := handlers.DeleteAccount(ctx, store, auth.UserIDFromContext(ctx), req); err != nil {
			respondWithHandlerError(w, r, "deleteAccount", err, "")
			return
		}
		respondWithMessage(w, http.StatusOK, "Account deleted successfully")
	}
}
