package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/handlers"
	"github.com/giannis84/tunelib/internal/logging"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, MessageResponse{Message: message})
}

// decodeBody reads a JSON request body into dst, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		logging.Log(r.Context()).Layer("routes").Op(op).Err(err).Warn("failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondWithHandlerError maps the errors returned by the handlers package to
// status codes. notFound is the message used for database.ErrNotFound.
func respondWithHandlerError(w http.ResponseWriter, r *http.Request, op string, err error, notFound string) {
	log := logging.Log(r.Context()).Layer("routes").Op(op).Err(err)

	var validationErr *handlers.ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Warn("validation failed")
		respondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: validationErr.Errors,
		})
	case errors.Is(err, database.ErrAlreadyExists):
		log.Warn("track already in library")
		respondWithError(w, http.StatusConflict, "Track is already in your library")
	case errors.Is(err, database.ErrNotFound):
		log.Warn("library entry not found")
		respondWithError(w, http.StatusNotFound, notFound)
	case errors.Is(err, database.ErrUserNotFound):
		log.Warn("user not found")
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, handlers.ErrInvalidCredentials):
		log.Warn("invalid credentials")
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, handlers.ErrIncorrectPassword):
		log.Warn("incorrect password")
		respondWithError(w, http.StatusUnprocessableEntity, "Password is incorrect")
	default:
		log.Error("request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
