// Library model definitions

package models

import "time"

// LibraryEntry is one catalog track a user has marked as favourite.
// Display fields are copied from the catalog when the entry is created and never re-synced.
type LibraryEntry struct {
	ID              int64     `json:"id"`
	OwnerID         string    `json:"owner_id"`
	TrackRef        string    `json:"track_ref"`
	Title           string    `json:"title"`
	ArtistName      string    `json:"artist_name"`
	AudioURL        string    `json:"audio_url"`
	ImageURL        string    `json:"image_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// FavoriteStatus is the body returned by the favourite check endpoint.
type FavoriteStatus struct {
	IsFavorite bool `json:"isFavorite"`
}
