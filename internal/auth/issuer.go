package auth

import (
	"fmt"
	"time"

	"github.com/giannis84/tunelib/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints bearer tokens. The caller persists the returned AccessToken record;
// JWTMiddleware only accepts tokens whose record still exists.
type Issuer struct {
	cfg AuthConfig
	now func() time.Time
}

// NewIssuer creates an Issuer for the given configuration.
func NewIssuer(cfg AuthConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Issue signs a new token for userID.
func (i *Issuer) Issue(userID string) (string, *models.AccessToken, error) {
	if i.cfg.Secret == "" {
		return "", nil, fmt.Errorf("token signing is not configured")
	}

	now := i.now()
	record := &models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(i.cfg.ttl()),
	}

	claims := jwt.MapClaims{
		"sub": userID,
		"jti": record.ID,
		"iat": now.Unix(),
		"exp": record.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return signed, record, nil
}
