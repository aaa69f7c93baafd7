// Package catalog reads track metadata from the Jamendo v3.0 API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/models"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.jamendo.com/v3.0"

	defaultLimit = 20
	maxLimit     = 200

	// Jamendo documents no hard limit; stay polite.
	rateLimit = 5
	rateBurst = 5
)

var (
	ErrMissingClientID = errors.New("jamendo client id is required")
	ErrTrackNotFound   = errors.New("track not found in catalog")
)

// APIError is a failure reported in the Jamendo response headers.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jamendo error %d: %s", e.Code, e.Message)
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit overrides the request rate (per second) and burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// Client is a read-only Jamendo tracks client.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(clientID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Popular returns the most played tracks of all time.
func (c *Client) Popular(ctx context.Context, limit int) ([]models.Track, error) {
	return c.tracks(ctx, url.Values{"order": {"popularity_total"}}, limit)
}

// Latest returns the most recently released tracks.
func (c *Client) Latest(ctx context.Context, limit int) ([]models.Track, error) {
	return c.tracks(ctx, url.Values{"order": {"releasedate_desc"}}, limit)
}

// Search runs a free-text search. Ranking is Jamendo's.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	return c.tracks(ctx, url.Values{"search": {query}}, limit)
}

// Track looks up a single track by its Jamendo id.
func (c *Client) Track(ctx context.Context, id string) (*models.Track, error) {
	tracks, err := c.tracks(ctx, url.Values{"id": {id}}, 1)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrTrackNotFound
	}
	return &tracks[0], nil
}

type tracksResponse struct {
	Headers struct {
		Status       string `json:"status"`
		Code         int    `json:"code"`
		ErrorMessage string `json:"error_message"`
		ResultsCount int    `json:"results_count"`
	} `json:"headers"`
	Results []struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Duration   float64 `json:"duration"`
		ArtistName string  `json:"artist_name"`
		AlbumName  string  `json:"album_name"`
		Audio      string  `json:"audio"`
		Image      string  `json:"image"`
	} `json:"results"`
}

func (c *Client) tracks(ctx context.Context, params url.Values, limit int) ([]models.Track, error) {
	if c.clientID == "" {
		return nil, ErrMissingClientID
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	params.Set("limit", strconv.Itoa(min(limit, maxLimit)))
	params.Set("client_id", c.clientID)
	params.Set("format", "json")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tracks/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting tracks: %w", err)
	}
	defer resp.Body.Close()

	logging.Log(ctx).Layer("catalog").Op("tracks").Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Debug("jamendo request finished")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jamendo HTTP %d: %s", resp.StatusCode, body)
	}

	var payload tracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}
	if payload.Headers.Status != "success" {
		return nil, &APIError{Code: payload.Headers.Code, Message: payload.Headers.ErrorMessage}
	}

	tracks := make([]models.Track, 0, len(payload.Results))
	for _, r := range payload.Results {
		tracks = append(tracks, models.Track{
			ID:         r.ID,
			Name:       r.Name,
			ArtistName: r.ArtistName,
			AlbumName:  r.AlbumName,
			Audio:      r.Audio,
			Image:      r.Image,
			Duration:   r.Duration,
		})
	}
	return tracks, nil
}
