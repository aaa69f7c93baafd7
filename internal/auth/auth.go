package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey  contextKey = "userID"
	tokenIDKey contextKey = "tokenID"
)

// DefaultTokenTTL applies when AuthConfig.TokenTTL is zero.
const DefaultTokenTTL = 30 * 24 * time.Hour

// AuthConfig holds the bearer token settings.
type AuthConfig struct {
	// Secret is the HS256 signing key.
	Secret   string
	TokenTTL time.Duration
}

func (c AuthConfig) ttl() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

// TokenChecker reports whether an issued token has not been revoked.
type TokenChecker interface {
	TokenActiveInDB(ctx context.Context, tokenID, userID string) (bool, error)
}

// JWTMiddleware returns HTTP middleware that validates the bearer token from the
// Authorization header, checks it has not been revoked, and places the "sub" and
// "jti" claims into the request context.
func JWTMiddleware(cfg AuthConfig, checker TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				unauthorized(w, "missing or malformed Authorization header")
				return
			}

			claims, err := parseToken(tokenString, cfg.Secret)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				unauthorized(w, "token missing sub claim")
				return
			}
			jti, _ := claims["jti"].(string)
			if jti == "" {
				unauthorized(w, "token missing jti claim")
				return
			}

			active, err := checker.TokenActiveInDB(r.Context(), jti, sub)
			if err != nil || !active {
				unauthorized(w, "token revoked or expired")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, sub)
			ctx = context.WithValue(ctx, tokenIDKey, jti)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user ID stored by JWTMiddleware.
// Returns an empty string if no user ID is present.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// TokenIDFromContext returns the ID of the token that authenticated the request.
func TokenIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenIDKey).(string)
	return v
}

// NewContextWithIdentity attaches a user and token ID to ctx, the way JWTMiddleware does.
func NewContextWithIdentity(ctx context.Context, userID, tokenID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, tokenIDKey, tokenID)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// parseToken validates an HS256 token string and its expiry.
func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("token signing is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
