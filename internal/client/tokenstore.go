package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// TokenKey is the fixed key the bearer token is stored under.
const TokenKey = "token"

// TokenStore is durable client-side key-value storage for the bearer token.
// An empty token means "not authenticated".
type TokenStore interface {
	Token() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// FileTokenStore keeps state in a TOML file of string keys and values.
// Keys other than TokenKey are preserved on write.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultStatePath returns ~/.tunelib/state.toml.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tunelib", "state.toml")
	}
	return filepath.Join(home, ".tunelib", "state.toml")
}

func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return "", err
	}
	return state[TokenKey], nil
}

func (s *FileTokenStore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state[TokenKey] = token
	return s.save(state)
}

func (s *FileTokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := state[TokenKey]; !ok {
		return nil
	}
	delete(state, TokenKey)
	return s.save(state)
}

func (s *FileTokenStore) load() (map[string]string, error) {
	state := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}
	return state, nil
}

func (s *FileTokenStore) save(state map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.toml")
	if err != nil {
		return fmt.Errorf("creating state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(state); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// MemoryTokenStore keeps the token in memory. Useful for tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken() error {
	return s.SaveToken("")
}
