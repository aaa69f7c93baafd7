package models

import "time"

// Profile is a registered user. PasswordHash is never serialised.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	BirthDate    time.Time `json:"birth_date"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccessToken is the server-side record of an issued bearer token.
// Deleting the record revokes the token.
type AccessToken struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
