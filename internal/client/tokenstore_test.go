package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")
	store := NewFileTokenStore(path)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means not authenticated")

	require.NoError(t, store.SaveToken("abc.def.ghi"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = NewFileTokenStore(path).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.ClearToken())
	token, err = store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStore_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = \"http://localhost:8080\"\n"), 0o600))

	store := NewFileTokenStore(path)
	require.NoError(t, store.SaveToken("tok"))
	require.NoError(t, store.ClearToken())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_url")
	assert.NotContains(t, string(data), "tok")
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o600))

	_, err := NewFileTokenStore(path).Token()
	assert.Error(t, err)
}

func TestMemoryTokenStore(t *testing.T) {
	var store MemoryTokenStore
	require.NoError(t, store.SaveToken("t"))
	token, _ := store.Token()
	assert.Equal(t, "t", token)
	require.NoError(t, store.ClearToken())
	token, _ = store.Token()
	assert.Empty(t, token)
}
