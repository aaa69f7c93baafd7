package models

// Track is a catalog track as returned by the external music catalog.
type Track struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ArtistName string  `json:"artist_name"`
	AlbumName  string  `json:"album_name,omitempty"`
	Audio      string  `json:"audio"`
	Image      string  `json:"image"`
	Duration   float64 `json:"duration"`
}
