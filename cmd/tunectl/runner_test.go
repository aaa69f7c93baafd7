package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/catalog"
	"github.com/giannis84/tunelib/internal/client"
	"github.com/giannis84/tunelib/internal/config"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/routes"
)

const jamendoTrack = `{
  "headers": {"status": "success", "code": 0, "error_message": "", "results_count": 1},
  "results": [
    {"id": "1204669", "name": "Wind", "duration": 212, "artist_name": "Avercage",
     "audio": "https://cdn/1204669.mp3", "image": "https://cdn/1204669.jpg"}
  ]
}`

type testEnv struct {
	runner *Runner
	out    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	router := chi.NewRouter()
	router.Group(routes.RegisterAPIRoutes(
		database.NewMockRepository(),
		auth.AuthConfig{Secret: "tunectl-test-secret-0123", TokenTTL: time.Hour},
		config.RateLimitConfig{},
	))
	api := httptest.NewServer(router)
	t.Cleanup(api.Close)

	jamendo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, jamendoTrack)
	}))
	t.Cleanup(jamendo.Close)

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:     client.New(api.URL, &client.MemoryTokenStore{}),
		Catalog: catalog.NewClient("test-client", catalog.WithBaseURL(jamendo.URL), catalog.WithRateLimit(rate.Inf, 1)),
		Logger:  log.New(io.Discard),
		Output:  out,
	})
	return &testEnv{runner: runner, out: out}
}

// run executes one command line and returns what it printed.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	e.out.Reset()
	err := e.runner.App().Run(context.Background(), append([]string{"tunectl"}, args...))
	return e.out.String(), err
}

func (e *testEnv) register(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "register",
		"--email", "a@x.com", "--username", "alice", "--password", "password1",
		"--name", "Alice", "--last-name", "Smith", "--birth-date", "2000-01-01")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as alice")
}

func TestFav_TogglesTrack(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	out, err := env.run(t, "fav", "1204669")
	require.NoError(t, err)
	assert.Equal(t, "Added to favorites\n", out)

	out, err = env.run(t, "library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Avercage - Wind (3:32)")

	out, err = env.run(t, "library", "check", "1204669")
	require.NoError(t, err)
	assert.Equal(t, "1204669 is in your library.\n", out)

	out, err = env.run(t, "fav", "1204669")
	require.NoError(t, err)
	assert.Equal(t, "Removed from favorites\n", out)

	out, err = env.run(t, "library", "list")
	require.NoError(t, err)
	assert.Equal(t, "Your library is empty.\n", out)
}

func TestFav_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "fav", "1204669")
	require.NoError(t, err)
	assert.Equal(t, "Please login to add favorites\n", out)
}

func TestLibrary_ShowAndRemove(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	_, err := env.run(t, "fav", "1204669")
	require.NoError(t, err)

	out, err := env.run(t, "--json", "library", "show", "1204669")
	require.NoError(t, err)
	assert.Contains(t, out, `"track_ref": "1204669"`)

	out, err = env.run(t, "library", "remove", "1204669")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1204669 from your library.\n", out)

	_, err = env.run(t, "library", "show", "1204669")
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = env.run(t, "library", "remove")
	assert.ErrorIs(t, err, errMissingArgument)
}

func TestAccountCommands(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	out, err := env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "Born: 2000-01-01")

	_, err = env.run(t, "password", "--current", "wrong-password", "--new", "password2")
	assert.ErrorIs(t, err, client.ErrValidation)

	out, err = env.run(t, "password", "--current", "password1", "--new", "password2")
	require.NoError(t, err)
	assert.Equal(t, "Password updated.\n", out)

	out, err = env.run(t, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, err = env.run(t, "whoami")
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)

	_, err = env.run(t, "login", "--email", "a@x.com", "--password", "password1")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	out, err = env.run(t, "login", "--email", "a@x.com", "--password", "password2")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice")

	out, err = env.run(t, "delete-account", "--password", "password2")
	require.NoError(t, err)
	assert.Equal(t, "Account deleted.\n", out)
}

func TestBrowseAndSearch(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"browse", "popular"},
		{"browse", "latest", "--limit", "5"},
		{"search", "wind"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, err := env.run(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "1204669")
			assert.Contains(t, out, "Avercage - Wind")
		})
	}

	_, err := env.run(t, "search")
	assert.ErrorIs(t, err, errMissingArgument)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "3:32", formatDuration(212))
	assert.Equal(t, "61:01", formatDuration(3661))
}
