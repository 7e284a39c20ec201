package covers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var _ Store = (*LocalStore)(nil)

// LocalStore writes covers as files in a single directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir when missing
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cover directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cover directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes data to a temporary file and renames it into place
func (s *LocalStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	name, err := randomName(extension(contentType))
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write cover: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write cover: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store cover: %w", err)
	}
	return name, nil
}

func (s *LocalStore) Load(ctx context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}
	return data, nil
}

// Delete removes a cover. Deleting a missing cover is not an error.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	err := os.Remove(s.path(ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cover: %w", err)
	}
	return nil
}

// path confines ref to the store directory
func (s *LocalStore) path(ref string) string {
	return filepath.Join(s.dir, filepath.Base(ref))
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
