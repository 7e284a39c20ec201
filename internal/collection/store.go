package collection

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"readinglist/internal/models"
	"readinglist/internal/storage"
)

// Library is the caller-facing contract of the collection.
// Both *Store and *Shared implement it.
type Library interface {
	Add(ctx context.Context, in models.BookInput) (models.Book, error)
	Get(id string) (models.Book, error)
	ToggleFavorite(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, pagesRead int) error
	SetImagePath(ctx context.Context, id string, path string) error
	Delete(ctx context.Context, id string) error
	CompletionPercentage(id string) float64
	FilteredBooks(genre models.Genre) []models.Book
	Grouped(genre models.Genre) (favorites, others []models.Book)
	Stats() models.Stats
	Persist(ctx context.Context) error
	Flush(ctx context.Context) error
}

var _ Library = (*Store)(nil)

// Store owns the ordered book collection and is the only writer of its snapshot.
//
// Lookups scan the slice linearly; collections hold tens to a few hundred books.
// Store is not safe for concurrent use, wrap it in Shared when several callers exist.
type Store struct {
	books  []models.Book
	slot   storage.Slot
	logger *zap.Logger
	dirty  bool // a mutation has not reached the slot yet
}

// New creates a store and restores the collection persisted in slot.
// An absent snapshot yields an empty collection. A snapshot that is not a JSON
// array is logged and ignored; a failing slot read is returned as *PersistenceError.
func New(ctx context.Context, slot storage.Slot, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{slot: slot, logger: logger}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) restore(ctx context.Context) error {
	data, ok, err := s.slot.Get(ctx, SnapshotKey)
	if err != nil {
		s.logger.Error("Failed to read snapshot", zap.Error(err))
		return &PersistenceError{Cause: err}
	}
	if !ok {
		s.logger.Info("No snapshot found, starting with an empty collection")
		return nil
	}

	books, skipped, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("Ignoring unreadable snapshot", zap.Error(err), zap.Int("bytes", len(data)))
		return nil
	}
	if skipped > 0 {
		s.logger.Warn("Skipped malformed snapshot records", zap.Int("skipped", skipped))
	}

	s.books = books
	s.logger.Info("Collection restored", zap.Int("book_count", len(books)))
	return nil
}

// Persist writes the whole collection to the slot
func (s *Store) Persist(ctx context.Context) error {
	data, err := encodeSnapshot(s.books)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", zap.Error(err))
		return &PersistenceError{Cause: err}
	}
	if err := s.slot.Set(ctx, SnapshotKey, data); err != nil {
		s.logger.Error("Failed to save snapshot",
			zap.Error(err),
			zap.Int("book_count", len(s.books)),
		)
		return &PersistenceError{Cause: err}
	}
	s.dirty = false
	return nil
}

// Flush persists only when a mutation is still unsaved, so an unreadable
// snapshot is never replaced by an unchanged collection.
func (s *Store) Flush(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	return s.Persist(ctx)
}

func (s *Store) commit(ctx context.Context) error {
	s.dirty = true
	return s.Persist(ctx)
}

// Add validates the candidate, rejects duplicates and appends a new unread book.
// When only persisting fails, the created book is returned together with the error.
func (s *Store) Add(ctx context.Context, in models.BookInput) (models.Book, error) {
	v, err := validateInput(in)
	if err != nil {
		return models.Book{}, err
	}

	if s.isDuplicate(v) {
		s.logger.Info("Rejected duplicate book",
			zap.String("title", v.title),
			zap.String("author", v.author),
		)
		return models.Book{}, ErrDuplicate
	}

	book := models.Book{
		ID:         uuid.NewString(),
		Title:      v.title,
		Author:     v.author,
		Genre:      v.genre,
		TotalPages: v.totalPages,
		ImagePath:  v.imagePath,
	}
	s.books = append(s.books, book)

	s.logger.Info("Book added",
		zap.String("book_id", book.ID),
		zap.String("title", book.Title),
		zap.String("genre", book.Genre.String()),
		zap.Int("total_pages", book.TotalPages),
	)

	return book, s.commit(ctx)
}

func (s *Store) isDuplicate(v validated) bool {
	for _, b := range s.books {
		if strings.EqualFold(b.Title, v.title) &&
			strings.EqualFold(b.Author, v.author) &&
			b.Genre == v.genre &&
			b.TotalPages == v.totalPages {
			return true
		}
	}
	return false
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.books, func(b models.Book) bool {
		return b.ID == id
	})
}

// Get returns a copy of the book with the given id
func (s *Store) Get(id string) (models.Book, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Book{}, &NotFoundError{ID: id}
	}
	return s.books[i], nil
}

// ToggleFavorite flips the favorite flag of a book
func (s *Store) ToggleFavorite(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	models.ToggleFavorite(&s.books[i])
	s.logger.Debug("Favorite toggled",
		zap.String("book_id", id),
		zap.Bool("is_favorite", s.books[i].IsFavorite),
	)
	return s.commit(ctx)
}

// UpdateProgress sets the pages read, clamped to [0, totalPages]
func (s *Store) UpdateProgress(ctx context.Context, id string, pagesRead int) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	book := &s.books[i]
	book.PagesRead = clamp(pagesRead, 0, book.TotalPages)
	if book.PagesRead != pagesRead {
		s.logger.Debug("Progress clamped",
			zap.String("book_id", id),
			zap.Int("requested", pagesRead),
			zap.Int("stored", book.PagesRead),
		)
	}
	return s.commit(ctx)
}

// SetImagePath attaches a cover reference to a book. An empty path detaches it.
func (s *Store) SetImagePath(ctx context.Context, id string, path string) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	s.books[i].ImagePath = strings.TrimSpace(path)
	return s.commit(ctx)
}

// Delete removes a book from the collection
func (s *Store) Delete(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	s.books = slices.Delete(s.books, i, i+1)
	s.logger.Info("Book deleted", zap.String("book_id", id))
	return s.commit(ctx)
}

// CompletionPercentage returns the read share of a book in [0, 100].
// Unknown ids and books without pages report 0.
func (s *Store) CompletionPercentage(id string) float64 {
	i := s.indexOf(id)
	if i < 0 {
		return 0
	}
	return completion(s.books[i])
}

func completion(b models.Book) float64 {
	if b.TotalPages <= 0 {
		return 0
	}
	return float64(b.PagesRead) / float64(b.TotalPages) * 100
}

// FilteredBooks returns the books of one genre in stored order.
// An empty genre returns the whole collection.
func (s *Store) FilteredBooks(genre models.Genre) []models.Book {
	result := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if genre == "" || b.Genre == genre {
			result = append(result, b)
		}
	}
	return result
}

// Grouped splits FilteredBooks into favorites and the rest, each in stored order
func (s *Store) Grouped(genre models.Genre) (favorites, others []models.Book) {
	favorites = []models.Book{}
	others = []models.Book{}
	for _, b := range s.FilteredBooks(genre) {
		if b.IsFavorite {
			favorites = append(favorites, b)
		} else {
			others = append(others, b)
		}
	}
	return favorites, others
}

// Stats summarizes the collection
func (s *Store) Stats() models.Stats {
	stats := models.Stats{ByGenre: make(map[models.Genre]int, len(models.AllGenres()))}
	for _, g := range models.AllGenres() {
		stats.ByGenre[g] = 0
	}
	for _, b := range s.books {
		stats.Total++
		stats.ByGenre[b.Genre]++
		stats.PagesRead += b.PagesRead
		if b.IsFavorite {
			stats.Favorites++
		}
		if b.IsCompleted() {
			stats.Completed++
		}
	}
	return stats
}
