// Package covers stores book cover images and normalizes uploads before storing them.
package covers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a cover reference points to nothing
var ErrNotFound = errors.New("cover not found")

// Store persists processed cover images. The returned reference is what a
// book keeps in its imagePath.
type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (ref string, err error)
	Load(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

func randomName(ext string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	return fmt.Sprintf("%x%s", buf, ext), nil
}
