package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenKey is the fixed name the credential token is stored under.
const TokenKey = "vitacoin_token"

// ErrNoToken is returned by Load when no token is stored.
var ErrNoToken = errors.New("no token stored")

// Store persists a single credential token under a fixed key in the user's
// config directory. It is the durable half of the session: the in-memory
// identity is rebuilt from the server on startup using this token.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir uses
// os.UserConfigDir()/vitacoin.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		dir = filepath.Join(configDir, "vitacoin")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, TokenKey)
}

// Save writes the token, creating the directory if needed. The file is
// user-readable only.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Load returns the stored token, or ErrNoToken if none exists.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Clear removes the stored token. Clearing an absent token is not an error;
// logout must never fail.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
