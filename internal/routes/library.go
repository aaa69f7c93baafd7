package routes

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/handlers"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/models"
	"github.com/go-chi/chi/v5"
)

const entryNotFound = "Track not found in library"

// trackRefParam reads {trackRef}, answering 400 itself when it is blank or badly escaped.
// chi routes on RawPath when the path holds escapes such as %2F, leaving the param escaped.
func trackRefParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ref := chi.URLParam(r, "trackRef")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(ref)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "track reference is not properly escaped")
			return "", false
		}
		ref = unescaped
	}
	if strings.TrimSpace(ref) == "" {
		respondWithError(w, http.StatusBadRequest, "track reference is required")
		return "", false
	}
	return ref, true
}

func getLibraryRoute(repo database.LibraryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		entries, err := handlers.GetLibrary(ctx, repo, userID)
		if err != nil {
			respondWithHandlerError(w, r, "getLibrary", err, entryNotFound)
			return
		}

		logging.Log(ctx).Layer("routes").Op("getLibrary").User(userID).
			Int("count", len(entries)).Int("status_code", http.StatusOK).
			Info("library retrieved")
		respondWithJSON(w, http.StatusOK, entries)
	}
}

func addToLibraryRoute(repo database.LibraryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		var req handlers.AddLibraryEntryRequest
		if !decodeBody(w, r, "addToLibrary", &req) {
			return
		}

		logging.Log(ctx).Layer("routes").Op("addToLibrary").User(userID).Track(req.TrackRef).
			Info("received add to library request")

		entry, err := handlers.AddToLibrary(ctx, repo, userID, req)
		if err != nil {
			respondWithHandlerError(w, r, "addToLibrary", err, entryNotFound)
			return
		}

		logging.Log(ctx).Layer("routes").Op("addToLibrary").User(userID).Track(entry.TrackRef).
			Entry(entry.ID).Int("status_code", http.StatusCreated).Info("track added to library")
		respondWithJSON(w, http.StatusCreated, entry)
	}
}

func checkLibraryRoute(repo database.LibraryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)
		trackRef, ok := trackRefParam(w, r)
		if !ok {
			return
		}

		exists, err := handlers.IsInLibrary(ctx, repo, userID, trackRef)
		if err != nil {
			respondWithHandlerError(w, r, "checkLibrary", err, entryNotFound)
			return
		}
		respondWithJSON(w, http.StatusOK, models.FavoriteStatus{IsFavorite: exists})
	}
}

func getLibraryEntryRoute(repo database.LibraryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)
		trackRef, ok := trackRefParam(w, r)
		if !ok {
			return
		}

		entry, err := handlers.GetLibraryEntry(ctx, repo, userID, trackRef)
		if err != nil {
			respondWithHandlerError(w, r, "getLibraryEntry", err, entryNotFound)
			return
		}
		respondWithJSON(w, http.StatusOK, entry)
	}
}

func removeFromLibraryRoute(repo database.LibraryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)
		trackRef, ok := trackRefParam(w, r)
		if !ok {
			return
		}

		logging.Log(ctx).Layer("routes").Op("removeFromLibrary").User(userID).Track(trackRef).
			Info("received remove from library request")

		if err := handlers.RemoveFromLibrary(ctx, repo, userID, trackRef); err != nil {
			respondWithHandlerError(w, r, "removeFromLibrary", err, entryNotFound)
			return
		}

		logging.Log(ctx).Layer("routes").Op("removeFromLibrary").User(userID).Track(trackRef).
			Int("status_code", http.StatusOK).Info("track removed from library")
		respondWithMessage(w, http.StatusOK, "Track removed from library")
	}
}
