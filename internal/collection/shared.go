package collection

import (
	"context"
	"sync"

	"readinglist/internal/models"
)

var _ Library = (*Shared)(nil)

// Shared serializes every call into a Store with a single mutex,
// for hosts where the bot and the HTTP API run side by side.
type Shared struct {
	mu    sync.Mutex
	store *Store
}

// NewShared wraps store. The caller must stop using store directly.
func NewShared(store *Store) *Shared {
	return &Shared{store: store}
}

func (s *Shared) Add(ctx context.Context, in models.BookInput) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Add(ctx, in)
}

func (s *Shared) Get(id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

func (s *Shared) ToggleFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ToggleFavorite(ctx, id)
}

func (s *Shared) UpdateProgress(ctx context.Context, id string, pagesRead int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.UpdateProgress(ctx, id, pagesRead)
}

func (s *Shared) SetImagePath(ctx context.Context, id string, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetImagePath(ctx, id, path)
}

func (s *Shared) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, id)
}

func (s *Shared) CompletionPercentage(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.CompletionPercentage(id)
}

func (s *Shared) FilteredBooks(genre models.Genre) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FilteredBooks(genre)
}

func (s *Shared) Grouped(genre models.Genre) (favorites, others []models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Grouped(genre)
}

func (s *Shared) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Stats()
}

func (s *Shared) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Persist(ctx)
}

func (s *Shared) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Flush(ctx)
}
