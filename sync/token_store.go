// ABOUTME: File-backed OAuth token persistence
// ABOUTME: Writes the token as JSON, creating its directory with owner-only permissions
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenStore saves and loads OAuth tokens.
type TokenStore interface {
	SaveToken(token *oauth2.Token) error
	LoadToken() (*oauth2.Token, error)
}

// FileTokenStore keeps a single token in a JSON file.
type FileTokenStore struct {
	Path string
}

// NewFileTokenStore creates a new FileTokenStore with the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

// SaveToken overwrites the token file with token.
func (store *FileTokenStore) SaveToken(token *oauth2.Token) error {
	if err := ensureDir(filepath.Dir(store.Path)); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(store.Path, data, 0600); err != nil {
		return &StorageError{Path: store.Path, Err: err}
	}

	return nil
}

// LoadToken loads the token from the file.
// Returns nil, nil if the file does not exist.
func (store *FileTokenStore) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(store.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// ensureDir creates dir with 0700 permissions. Losing a creation race to
// another process is fine as long as a directory ends up there.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return &StorageError{Path: dir, Err: err}
	}
	return nil
}
