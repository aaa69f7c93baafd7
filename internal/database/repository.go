package database

import (
	"context"
	"errors"

	"github.com/giannis84/tunelib/internal/models"
)

var (
	ErrNotFound      = errors.New("library entry not found")
	ErrAlreadyExists = errors.New("library entry already exists")

	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email has already been taken")
	ErrUsernameTaken = errors.New("username has already been taken")
)

// LibraryRepository defines the storage of per-user library entries.
// Every method is scoped by the owner; an entry of another user is reported as ErrNotFound.
type LibraryRepository interface {
	ListLibraryFromDB(ctx context.Context, ownerID string) ([]*models.LibraryEntry, error)
	GetLibraryEntryFromDB(ctx context.Context, ownerID, trackRef string) (*models.LibraryEntry, error)
	LibraryEntryExistsInDB(ctx context.Context, ownerID, trackRef string) (bool, error)
	// AddLibraryEntryInDB stores the entry and fills in its ID and CreatedAt.
	// Returns ErrAlreadyExists when the (owner, track) pair is taken.
	AddLibraryEntryInDB(ctx context.Context, entry *models.LibraryEntry) error
	DeleteLibraryEntryFromDB(ctx context.Context, ownerID, trackRef string) error
}

// UserRepository defines the storage of registered profiles.
type UserRepository interface {
	CreateUserInDB(ctx context.Context, profile *models.Profile) error
	GetUserByIDFromDB(ctx context.Context, userID string) (*models.Profile, error)
	GetUserByEmailFromDB(ctx context.Context, email string) (*models.Profile, error)
	UpdatePasswordInDB(ctx context.Context, userID, passwordHash string) error
	DeleteUserFromDB(ctx context.Context, userID string) error
}

// TokenRepository defines the storage of issued bearer tokens.
type TokenRepository interface {
	CreateTokenInDB(ctx context.Context, token *models.AccessToken) error
	TokenActiveInDB(ctx context.Context, tokenID, userID string) (bool, error)
	DeleteTokenFromDB(ctx context.Context, tokenID string) error
}
