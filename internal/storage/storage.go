package storage

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/Dan9191/leads-service/internal/models"
)

// Store persists uploaded resume files on the local disk
type Store struct {
	dir string
}

// NewStore initializes the store and ensures the upload directory exists
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the resume bytes and returns the storage path. The path is
// keyed by submitter email plus original filename and is treated as opaque
// by callers.
func (s *Store) Save(email, filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s", email, filepath.Base(filename)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save resume: %w", err)
	}
	return path, nil
}

// Get reads back previously stored resume bytes
func (s *Store) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	return data, nil
}

// ContentTypeFor guesses a content type from the stored filename extension
func ContentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
