// Package client talks to the tunelib HTTP API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giannis84/tunelib/internal/handlers"
	"github.com/giannis84/tunelib/internal/models"
)

var (
	// ErrNotAuthenticated is returned without a network call when no token is stored.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// APIError is a non-2xx response. It unwraps to one of the sentinel errors when
// the status has one.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return nil
}

// Session is what register and login return.
type Session struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:8080).
func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
	}
}

// Authenticated reports whether a token is stored locally.
func (c *Client) Authenticated() bool {
	token, err := c.tokens.Token()
	return err == nil && token != ""
}

func (c *Client) Register(ctx context.Context, req handlers.RegisterRequest) (*Session, error) {
	return c.startSession(ctx, "/api/auth/register", req)
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/login", handlers.LoginRequest{Email: email, Password: password})
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, false, body, &session); err != nil {
		return nil, err
	}
	if err := c.tokens.SaveToken(session.Token); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}
	return &session, nil
}

// Logout revokes the token on the server and always forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", true, nil, nil)
	if clearErr := c.tokens.ClearToken(); clearErr != nil && err == nil {
		err = clearErr
	}
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/user", true, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdatePassword(ctx context.Context, req handlers.UpdatePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/api/user/password", true, req, nil)
}

// DeleteAccount removes the account and forgets the local token.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/user", true, handlers.DeleteAccountRequest{Password: password}, nil); err != nil {
		return err
	}
	return c.tokens.ClearToken()
}

func (c *Client) Library(ctx context.Context) ([]*models.LibraryEntry, error) {
	var entries []*models.LibraryEntry
	if err := c.do(ctx, http.MethodGet, "/api/library", true, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) LibraryEntry(ctx context.Context, trackRef string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	if err := c.do(ctx, http.MethodGet, "/api/library/track/"+url.PathEscape(trackRef), true, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Exists reports whether trackRef is in the signed-in user's library.
func (c *Client) Exists(ctx context.Context, trackRef string) (bool, error) {
	var status models.FavoriteStatus
	if err := c.do(ctx, http.MethodGet, "/api/library/check/"+url.PathEscape(trackRef), true, nil, &status); err != nil {
		return false, err
	}
	return status.IsFavorite, nil
}

// Add stores a catalog track in the library. A duplicate yields ErrConflict.
func (c *Client) Add(ctx context.Context, track models.Track) (*models.LibraryEntry, error) {
	duration := track.Duration
	req := handlers.AddLibraryEntryRequest{
		TrackRef:   track.ID,
		Title:      track.Name,
		ArtistName: track.ArtistName,
		AudioURL:   track.Audio,
		ImageURL:   track.Image,
		Duration:   &duration,
	}
	var entry models.LibraryEntry
	if err := c.do(ctx, http.MethodPost, "/api/library", true, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) Remove(ctx context.Context, trackRef string) error {
	return c.do(ctx, http.MethodDelete, "/api/library/"+url.PathEscape(trackRef), true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body, out any) error {
	var token string
	if authenticated {
		var err error
		if token, err = c.tokens.Token(); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		if token == "" {
			return ErrNotAuthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
