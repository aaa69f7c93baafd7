// Package favsync keeps a favorite indicator in step with the server-side
// library for whichever track is currently active.
package favsync

import (
	"context"
	"errors"
	"sync"

	"github.com/giannis84/tunelib/internal/client"
	"github.com/giannis84/tunelib/internal/models"
)

const (
	MsgAdded           = "Added to favorites"
	MsgAlreadyFavorite = "Already in favorites"
	MsgRemoved         = "Removed from favorites"
	MsgLoginRequired   = "Please login to add favorites"
	MsgFailed          = "Something went wrong. Please try again."
)

type State int

const (
	Unknown State = iota
	NotFavorite
	Favorite
)

func (s State) String() string {
	switch s {
	case NotFavorite:
		return "not favorite"
	case Favorite:
		return "favorite"
	default:
		return "unknown"
	}
}

// Outcome is the result of a toggle.
type Outcome int

const (
	Added Outcome = iota + 1
	AlreadyFavorite
	Removed
	LoginRequired
	Failed
)

// Library is the server-side store as seen from the client.
// *client.Client satisfies it.
type Library interface {
	Authenticated() bool
	Exists(ctx context.Context, trackRef string) (bool, error)
	Add(ctx context.Context, track models.Track) (*models.LibraryEntry, error)
	Remove(ctx context.Context, trackRef string) error
}

// Controller owns the volatile favorite state for the active track.
type Controller struct {
	lib      Library
	notifier *Notifier

	mu    sync.Mutex
	track *models.Track
	state State
	// seq identifies the latest existence check; results of older checks are dropped.
	seq uint64
}

func NewController(lib Library, notifier *Notifier) *Controller {
	if notifier == nil {
		notifier = NewNotifier(DefaultNotificationDuration)
	}
	return &Controller{lib: lib, notifier: notifier}
}

func (c *Controller) Notifier() *Notifier { return c.notifier }

// State returns the active track (nil if none) and its indicator state.
func (c *Controller) State() (*models.Track, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return nil, Unknown
	}
	t := *c.track
	return &t, c.state
}

// SetTrack makes track the active one, resets its state to Unknown and starts an
// existence check. The returned channel is closed once the check has settled,
// whether or not its result was applied. A nil track clears the state.
func (c *Controller) SetTrack(ctx context.Context, track *models.Track) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = Unknown
	if track == nil {
		c.track = nil
		c.mu.Unlock()
		close(done)
		return done
	}
	t := *track
	c.track = &t
	c.mu.Unlock()

	go func() {
		defer close(done)

		exists, err := c.lib.Exists(ctx, t.ID)
		next := NotFavorite
		if err == nil && exists {
			next = Favorite
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.seq == seq && c.track != nil && c.track.ID == t.ID {
			c.state = next
		}
	}()
	return done
}

// Toggle adds or removes track depending on its current indicator state and
// shows a notification. The track is passed by value; the result only touches
// the indicator if that track is still the active one.
func (c *Controller) Toggle(ctx context.Context, track models.Track) (Outcome, error) {
	if !c.lib.Authenticated() {
		c.notifier.Show(MsgLoginRequired)
		return LoginRequired, nil
	}

	c.mu.Lock()
	prior := Unknown
	if c.track != nil && c.track.ID == track.ID {
		prior = c.state
		// Any check still in flight predates this toggle.
		c.seq++
	}
	c.mu.Unlock()

	if prior == Favorite {
		// Already gone on the server counts as removed.
		if err := c.lib.Remove(ctx, track.ID); err != nil && !errors.Is(err, client.ErrNotFound) {
			return c.fail(track.ID, Favorite, err)
		}
		c.apply(track.ID, NotFavorite)
		c.notifier.Show(MsgRemoved)
		return Removed, nil
	}

	_, err := c.lib.Add(ctx, track)
	switch {
	case err == nil:
		c.apply(track.ID, Favorite)
		c.notifier.Show(MsgAdded)
		return Added, nil
	case errors.Is(err, client.ErrConflict):
		c.apply(track.ID, Favorite)
		c.notifier.Show(MsgAlreadyFavorite)
		return AlreadyFavorite, nil
	default:
		return c.fail(track.ID, NotFavorite, err)
	}
}

func (c *Controller) fail(trackID string, rollback State, err error) (Outcome, error) {
	c.apply(trackID, rollback)
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotAuthenticated) {
		c.notifier.Show(MsgLoginRequired)
		return LoginRequired, err
	}
	c.notifier.Show(MsgFailed)
	return Failed, err
}

func (c *Controller) apply(trackID string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track != nil && c.track.ID == trackID {
		c.state = state
	}
}
