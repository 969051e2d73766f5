// Package credentials keeps the API token in the system keyring, or in a
// private file when no keyring is available (headless systems).
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/kutbudev/duedeck/internal/config"
)

const (
	keyringService = "duedeck"
	keyringUser    = "api-token"
	fallbackFile   = ".token"
)

// ErrNoToken is returned by Load when no token has been stored.
var ErrNoToken = errors.New("no API token stored")

// Store reads and writes the token.
type Store struct {
	fallbackPath string

	mu       sync.Mutex
	checked  bool
	fallback bool
}

// New returns a Store whose fallback file lives in the config directory.
func New() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewAt(filepath.Join(dir, fallbackFile)), nil
}

// NewAt returns a Store with an explicit fallback file path.
func NewAt(fallbackPath string) *Store {
	return &Store{fallbackPath: fallbackPath}
}

// keyringAvailable tests the system keyring once with a probe entry.
func (s *Store) keyringAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checked {
		return !s.fallback
	}
	s.checked = true

	testKey := keyringUser + "-probe"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		s.fallback = true
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// Save stores token, replacing any previous one.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if s.keyringAvailable() {
		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token in keyring: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	// owner read/write only
	if err := os.WriteFile(s.fallbackPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load returns the stored token, or ErrNoToken.
func (s *Store) Load() (string, error) {
	if s.keyringAvailable() {
		token, err := keyring.Get(keyringService, keyringUser)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		if err != nil {
			return "", fmt.Errorf("failed to read token from keyring: %w", err)
		}
		return token, nil
	}

	data, err := os.ReadFile(s.fallbackPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the token from the keyring and the fallback file.
func (s *Store) Delete() error {
	var keyringErr error
	if s.keyringAvailable() {
		keyringErr = keyring.Delete(keyringService, keyringUser)
		if errors.Is(keyringErr, keyring.ErrNotFound) {
			keyringErr = nil
		}
	}

	fileErr := os.Remove(s.fallbackPath)
	if errors.Is(fileErr, os.ErrNotExist) {
		fileErr = nil
	}
	return errors.Join(keyringErr, fileErr)
}

// Mode describes where tokens are kept.
func (s *Store) Mode() string {
	if s.keyringAvailable() {
		return "system-keyring"
	}
	return "file-based (keyring unavailable)"
}
