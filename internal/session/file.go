package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// fileRecord is the on-disk shape of session.json.
type fileRecord struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStorage persists the token as a small JSON file readable only by the
// current user.
type FileStorage struct {
	path string
}

// NewFileStorage creates a storage backed by the file at path. The parent
// directory is created on first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultFilePath returns ~/.poetryctl/session.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewStorageError(errors.ErrCodeStorageRead, "failed to get home directory", err)
	}
	return filepath.Join(home, ".poetryctl", "session.json"), nil
}

// Path returns the backing file path.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads the token. A missing file means no session.
func (f *FileStorage) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.NewStorageError(errors.ErrCodeStorageRead, "failed to read session file", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", errors.NewStorageError(errors.ErrCodeStorageRead, "failed to parse session file", err).
			WithSuggestion("Run 'poetryctl auth logout' to reset the session file")
	}
	return rec.Token, nil
}

// Save writes the token atomically via a temp file and rename.
func (f *FileStorage) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageWrite, "failed to create session directory", err)
	}

	data, err := json.MarshalIndent(fileRecord{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageWrite, "failed to encode session file", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageWrite, "failed to write session file", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return errors.NewStorageError(errors.ErrCodeStorageWrite, "failed to replace session file", err)
	}
	return nil
}

// Clear removes the file. Removing a missing file is not an error.
func (f *FileStorage) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError(errors.ErrCodeStorageClear, "failed to remove session file", err)
	}
	return nil
}
