package favsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giannis84/tunelib/internal/client"
	"github.com/giannis84/tunelib/internal/models"
)

type fakeLibrary struct {
	mu            sync.Mutex
	authenticated bool
	favorites     map[string]bool
	addErr        error
	removeErr     error
	calls         int
	// gates lets a test hold the Exists check for a given track until released.
	gates map[string]chan struct{}
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		authenticated: true,
		favorites:     map[string]bool{},
		gates:         map[string]chan struct{}{},
	}
}

func (f *fakeLibrary) gate(trackRef string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[trackRef] = ch
	return ch
}

func (f *fakeLibrary) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeLibrary) Exists(ctx context.Context, trackRef string) (bool, error) {
	f.mu.Lock()
	gate := f.gates[trackRef]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favorites[trackRef], nil
}

func (f *fakeLibrary) Add(ctx context.Context, track models.Track) (*models.LibraryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.addErr != nil {
		return nil, f.addErr
	}
	if f.favorites[track.ID] {
		return nil, client.ErrConflict
	}
	f.favorites[track.ID] = true
	return &models.LibraryEntry{TrackRef: track.ID, Title: track.Name}, nil
}

func (f *fakeLibrary) Remove(ctx context.Context, trackRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.favorites, trackRef)
	return nil
}

func track(id string) models.Track {
	return models.Track{ID: id, Name: "Track " + id, ArtistName: "Artist", Duration: 180}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("existence check did not settle")
	}
}

func TestSetTrack_ResolvesState(t *testing.T) {
	lib := newFakeLibrary()
	lib.favorites["A"] = true
	c := NewController(lib, NewNotifier(time.Minute))
	ctx := context.Background()

	a := track("A")
	waitDone(t, c.SetTrack(ctx, &a))
	current, state := c.State()
	require.NotNil(t, current)
	assert.Equal(t, "A", current.ID)
	assert.Equal(t, Favorite, state)

	b := track("B")
	waitDone(t, c.SetTrack(ctx, &b))
	_, state = c.State()
	assert.Equal(t, NotFavorite, state)

	waitDone(t, c.SetTrack(ctx, nil))
	current, state = c.State()
	assert.Nil(t, current)
	assert.Equal(t, Unknown, state)
}

func TestSetTrack_StaleCheckIsDiscarded(t *testing.T) {
	lib := newFakeLibrary()
	lib.favorites["A"] = true
	gateA := lib.gate("A")
	c := NewController(lib, NewNotifier(time.Minute))
	ctx := context.Background()

	a, b := track("A"), track("B")
	doneA := c.SetTrack(ctx, &a)
	_, state := c.State()
	assert.Equal(t, Unknown, state)

	waitDone(t, c.SetTrack(ctx, &b))
	_, state = c.State()
	assert.Equal(t, NotFavorite, state)

	// The check for A finishes late and must not touch B.
	close(gateA)
	waitDone(t, doneA)
	current, state := c.State()
	assert.Equal(t, "B", current.ID)
	assert.Equal(t, NotFavorite, state)
}

func TestSetTrack_CheckErrorSettlesNotFavorite(t *testing.T) {
	c := NewController(&erroringLibrary{}, nil)
	a := track("A")
	waitDone(t, c.SetTrack(context.Background(), &a))
	_, state := c.State()
	assert.Equal(t, NotFavorite, state)
	assert.False(t, c.Notifier().Current().Visible)
}

type erroringLibrary struct{ fakeLibrary }

func (e *erroringLibrary) Exists(context.Context, string) (bool, error) {
	return false, errors.New("boom")
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		favorite      bool
		addErr        error
		removeErr     error
		wantOutcome   Outcome
		wantState     State
		wantMessage   string
		wantErr       bool
		wantCalls     int
	}{
		{name: "add", authenticated: true, wantOutcome: Added, wantState: Favorite, wantMessage: MsgAdded, wantCalls: 1},
		{name: "remove", authenticated: true, favorite: true, wantOutcome: Removed, wantState: NotFavorite, wantMessage: MsgRemoved, wantCalls: 1},
		{name: "login required", authenticated: false, wantOutcome: LoginRequired, wantState: NotFavorite, wantMessage: MsgLoginRequired, wantCalls: 0},
		{name: "add fails", authenticated: true, addErr: errors.New("network down"), wantOutcome: Failed, wantState: NotFavorite, wantMessage: MsgFailed, wantErr: true, wantCalls: 1},
		{name: "remove fails", authenticated: true, favorite: true, removeErr: errors.New("network down"), wantOutcome: Failed, wantState: Favorite, wantMessage: MsgFailed, wantErr: true, wantCalls: 1},
		{name: "remove of already-gone entry", authenticated: true, favorite: true, removeErr: client.ErrNotFound, wantOutcome: Removed, wantState: NotFavorite, wantMessage: MsgRemoved, wantCalls: 1},
		{name: "token rejected", authenticated: true, addErr: client.ErrUnauthorized, wantOutcome: LoginRequired, wantState: NotFavorite, wantMessage: MsgLoginRequired, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newFakeLibrary()
			lib.favorites["A"] = tt.favorite
			c := NewController(lib, NewNotifier(time.Minute))
			ctx := context.Background()

			a := track("A")
			waitDone(t, c.SetTrack(ctx, &a))
			lib.authenticated = tt.authenticated
			lib.addErr = tt.addErr
			lib.removeErr = tt.removeErr

			outcome, err := c.Toggle(ctx, a)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOutcome, outcome)
			_, state := c.State()
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, Notification{Message: tt.wantMessage, Visible: true}, c.Notifier().Current())
			assert.Equal(t, tt.wantCalls, lib.calls)
		})
	}
}

func TestToggle_ConflictIsSoftSuccess(t *testing.T) {
	lib := newFakeLibrary()
	c := NewController(lib, NewNotifier(time.Minute))
	ctx := context.Background()

	a := track("A")
	waitDone(t, c.SetTrack(ctx, &a))
	// Another device adds the track after our check.
	lib.favorites["A"] = true

	outcome, err := c.Toggle(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, AlreadyFavorite, outcome)
	_, state := c.State()
	assert.Equal(t, Favorite, state)
	assert.Equal(t, MsgAlreadyFavorite, c.Notifier().Current().Message)
}

func TestToggle_WhileUnknownAttemptsAdd(t *testing.T) {
	lib := newFakeLibrary()
	gate := lib.gate("A")
	c := NewController(lib, NewNotifier(time.Minute))
	ctx := context.Background()

	a := track("A")
	done := c.SetTrack(ctx, &a)

	outcome, err := c.Toggle(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, Added, outcome)

	// The superseded check must not overwrite the toggle result.
	close(gate)
	waitDone(t, done)
	_, state := c.State()
	assert.Equal(t, Favorite, state)
}

func TestToggle_ResultForInactiveTrackLeavesIndicator(t *testing.T) {
	lib := newFakeLibrary()
	c := NewController(lib, NewNotifier(time.Minute))
	ctx := context.Background()

	b := track("B")
	waitDone(t, c.SetTrack(ctx, &b))

	outcome, err := c.Toggle(ctx, track("A"))
	require.NoError(t, err)
	assert.Equal(t, Added, outcome)
	assert.True(t, lib.favorites["A"])

	current, state := c.State()
	assert.Equal(t, "B", current.ID)
	assert.Equal(t, NotFavorite, state)
}
