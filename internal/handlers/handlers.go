package handlers

import (
	"context"
	"errors"

	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/models"
)

// AddLibraryEntryRequest is the body of POST /api/library.
type AddLibraryEntryRequest struct {
	TrackRef   string   `json:"track_ref"`
	Title      string   `json:"title"`
	ArtistName string   `json:"artist_name"`
	AudioURL   string   `json:"audio_url"`
	ImageURL   string   `json:"image_url"`
	Duration   *float64 `json:"duration"`
}

// Validate checks every field and reports all problems at once.
func (r AddLibraryEntryRequest) Validate() error {
	var checks []func() string
	checks = append(checks, required("track_ref", r.TrackRef)...)
	checks = append(checks, required("title", r.Title)...)
	checks = append(checks, required("artist_name", r.ArtistName)...)
	checks = append(checks,
		func() string { return requireNonEmpty("audio_url", r.AudioURL) },
		func() string { return requireNonEmpty("image_url", r.ImageURL) },
		func() string { return checkNumber("duration", r.Duration) },
	)
	return validate(checks...)
}

func (r AddLibraryEntryRequest) entry(ownerID string) *models.LibraryEntry {
	return &models.LibraryEntry{
		OwnerID:         ownerID,
		TrackRef:        r.TrackRef,
		Title:           r.Title,
		ArtistName:      r.ArtistName,
		AudioURL:        r.AudioURL,
		ImageURL:        r.ImageURL,
		DurationSeconds: *r.Duration,
	}
}

func GetLibrary(ctx context.Context, repo database.LibraryRepository, ownerID string) ([]*models.LibraryEntry, error) {
	return repo.ListLibraryFromDB(ctx, ownerID)
}

func GetLibraryEntry(ctx context.Context, repo database.LibraryRepository, ownerID, trackRef string) (*models.LibraryEntry, error) {
	return repo.GetLibraryEntryFromDB(ctx, ownerID, trackRef)
}

func IsInLibrary(ctx context.Context, repo database.LibraryRepository, ownerID, trackRef string) (bool, error) {
	return repo.LibraryEntryExistsInDB(ctx, ownerID, trackRef)
}

// AddToLibrary validates the request and stores a new entry for ownerID.
// The existence check only gives the common case an early answer; the storage
// constraint decides when two adds race, and both paths yield database.ErrAlreadyExists.
func AddToLibrary(ctx context.Context, repo database.LibraryRepository, ownerID string, req AddLibraryEntryRequest) (*models.LibraryEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := repo.LibraryEntryExistsInDB(ctx, ownerID, req.TrackRef)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, database.ErrAlreadyExists
	}

	entry := req.entry(ownerID)
	if err := repo.AddLibraryEntryInDB(ctx, entry); err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			logging.Log(ctx).Layer("handlers").Op("AddToLibrary").User(ownerID).Track(req.TrackRef).
				Debug("concurrent add rejected by unique constraint")
		}
		return nil, err
	}
	return entry, nil
}

func RemoveFromLibrary(ctx context.Context, repo database.LibraryRepository, ownerID, trackRef string) error {
	return repo.DeleteLibraryEntryFromDB(ctx, ownerID, trackRef)
}
