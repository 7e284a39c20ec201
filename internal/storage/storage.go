package storage

import (
	"context"
)

// Slot is a named key-value store holding opaque documents.
// The collection store keeps its whole snapshot under a single key.
type Slot interface {
	// Get returns the value stored under key.
	// A missing key is reported as ok=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set replaces the value stored under key. Readers never observe a partial write.
	Set(ctx context.Context, key string, data []byte) error

	// Lifecycle
	Close() error
}
