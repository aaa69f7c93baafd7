package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/giannis84/tunelib/internal/models"
)

// MockRepository is a simple in-memory repository intended for unit tests only.
// It emulates the unique constraints of the PostgreSQL schema.
type MockRepository struct {
	mu      sync.RWMutex
	nextID  int64
	now     func() time.Time
	library map[string]map[string]*models.LibraryEntry
	users   map[string]*models.Profile
	tokens  map[string]*models.AccessToken
}

// NewMockRepository returns a MockRepository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		now:     time.Now,
		library: make(map[string]map[string]*models.LibraryEntry),
		users:   make(map[string]*models.Profile),
		tokens:  make(map[string]*models.AccessToken),
	}
}

// SetClock replaces the time source used for created_at values.
func (r *MockRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MockRepository) ListLibraryFromDB(_ context.Context, ownerID string) ([]*models.LibraryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.LibraryEntry, 0, len(r.library[ownerID]))
	for _, entry := range r.library[ownerID] {
		copied := *entry
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MockRepository) GetLibraryEntryFromDB(_ context.Context, ownerID, trackRef string) (*models.LibraryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.library[ownerID][trackRef]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *MockRepository) LibraryEntryExistsInDB(_ context.Context, ownerID, trackRef string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.library[ownerID][trackRef]
	return exists, nil
}

func (r *MockRepository) AddLibraryEntryInDB(_ context.Context, entry *models.LibraryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.library[entry.OwnerID]; !exists {
		r.library[entry.OwnerID] = make(map[string]*models.LibraryEntry)
	}
	if _, exists := r.library[entry.OwnerID][entry.TrackRef]; exists {
		return ErrAlreadyExists
	}

	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = r.now()

	stored := *entry
	r.library[entry.OwnerID][entry.TrackRef] = &stored
	return nil
}

func (r *MockRepository) DeleteLibraryEntryFromDB(_ context.Context, ownerID, trackRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.library[ownerID][trackRef]; !exists {
		return ErrNotFound
	}
	delete(r.library[ownerID], trackRef)
	return nil
}

func (r *MockRepository) CreateUserInDB(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == profile.Email {
			return ErrEmailTaken
		}
		if existing.Username == profile.Username {
			return ErrUsernameTaken
		}
	}

	now := r.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	stored := *profile
	r.users[profile.ID] = &stored
	return nil
}

func (r *MockRepository) GetUserByIDFromDB(_ context.Context, userID string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *MockRepository) GetUserByEmailFromDB(_ context.Context, email string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, profile := range r.users {
		if profile.Email == email {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MockRepository) UpdatePasswordInDB(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.users[userID]
	if !exists {
		return ErrUserNotFound
	}
	profile.PasswordHash = passwordHash
	profile.UpdatedAt = r.now()
	return nil
}

func (r *MockRepository) DeleteUserFromDB(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[userID]; !exists {
		return ErrUserNotFound
	}
	delete(r.users, userID)
	delete(r.library, userID)
	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *MockRepository) CreateTokenInDB(_ context.Context, token *models.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	r.tokens[token.ID] = &stored
	return nil
}

func (r *MockRepository) TokenActiveInDB(_ context.Context, tokenID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.tokens[tokenID]
	if !exists || token.UserID != userID {
		return false, nil
	}
	return token.ExpiresAt.After(r.now()), nil
}

func (r *MockRepository) DeleteTokenFromDB(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, tokenID)
	return nil
}
