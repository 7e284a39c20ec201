package covers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"readinglist/internal/collection"
	"readinglist/internal/models"
)

// Service attaches processed cover images to books of a collection
type Service struct {
	store     Store
	processor *Processor
	library   collection.Library
	logger    *zap.Logger
}

func NewService(store Store, processor *Processor, library collection.Library, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, processor: processor, library: library, logger: logger}
}

// MaxSize is the largest upload the processor accepts
func (s *Service) MaxSize() int64 {
	return s.processor.MaxSize
}

// Attach normalizes data, stores it and points the book at it. The previous
// cover is removed once the change is persisted. A *collection.PersistenceError
// is returned together with the updated book, and the previous cover is kept.
func (s *Service) Attach(ctx context.Context, bookID string, data []byte) (models.Book, error) {
	book, err := s.library.Get(bookID)
	if err != nil {
		return models.Book{}, err
	}

	processed, err := s.processor.Process(data)
	if err != nil {
		return models.Book{}, err
	}

	ref, err := s.store.Save(ctx, processed, "image/jpeg")
	if err != nil {
		return models.Book{}, fmt.Errorf("save cover: %w", err)
	}

	err = s.library.SetImagePath(ctx, bookID, ref)
	if err != nil && !collection.IsPersistence(err) {
		s.Remove(ctx, ref)
		return models.Book{}, err
	}
	// The stored snapshot keeps the old reference until a write succeeds
	if err == nil {
		s.Remove(ctx, book.ImagePath)
	}

	s.logger.Info("Cover attached",
		zap.String("book_id", bookID),
		zap.String("ref", ref),
		zap.Int("bytes", len(processed)),
	)

	updated, getErr := s.library.Get(bookID)
	if getErr != nil {
		return models.Book{}, getErr
	}
	return updated, err
}

// Load returns the stored image behind ref
func (s *Service) Load(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, ErrNotFound
	}
	return s.store.Load(ctx, ref)
}

// Remove deletes a stored image, logging failures. An empty ref is ignored.
func (s *Service) Remove(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete cover", zap.String("ref", ref), zap.Error(err))
	}
}
