package stubs

import (
	"context"
	"sync"

	"readinglist/internal/storage"
)

var _ storage.Slot = (*MockSlot)(nil)

// MockSlot is an in-memory implementation of the Slot interface for testing
type MockSlot struct {
	mu        sync.RWMutex
	values    map[string][]byte
	writes    int
	failWrite error
	failRead  error
}

// NewMockSlot creates a new empty mock slot
func NewMockSlot() *MockSlot {
	return &MockSlot{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value
func (m *MockSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failRead != nil {
		return nil, false, m.failRead
	}

	data, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of data under key
func (m *MockSlot) Set(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrite != nil {
		return m.failWrite
	}

	m.values[key] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// FailWrites makes every following Set return err. A nil err restores normal behavior.
func (m *MockSlot) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

// FailReads makes every following Get return err. A nil err restores normal behavior.
func (m *MockSlot) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = err
}

// Writes returns the number of successful Set calls
func (m *MockSlot) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Close does nothing for mock slot
func (m *MockSlot) Close() error {
	return nil
}
