package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"readinglist/internal/models"
	"readinglist/internal/storage/stubs"
)

func newTestStore(t *testing.T) (*Store, *stubs.MockSlot) {
	t.Helper()
	slot := stubs.NewMockSlot()
	store, err := New(context.Background(), slot, zap.NewNop())
	require.NoError(t, err)
	return store, slot
}

func orwell() models.BookInput {
	return models.BookInput{
		Title:      "1984",
		Author:     "George Orwell",
		Genre:      models.GenreFiction,
		TotalPages: "328",
	}
}

func TestStore_EmptySlotStartsEmpty(t *testing.T) {
	store, slot := newTestStore(t)

	assert.Empty(t, store.FilteredBooks(""))
	assert.Equal(t, 0, slot.Writes(), "restoring must not write")
}

func TestStore_Add(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()

	book, err := store.Add(ctx, models.BookInput{
		Title:      "  Sapiens ",
		Author:     "Yuval Noah Harari",
		Genre:      models.GenreNonFiction,
		TotalPages: "443",
		ImagePath:  "covers/abc.jpg",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Sapiens", book.Title)
	assert.Equal(t, "Yuval Noah Harari", book.Author)
	assert.Equal(t, models.GenreNonFiction, book.Genre)
	assert.Equal(t, 443, book.TotalPages)
	assert.Equal(t, 0, book.PagesRead)
	assert.False(t, book.IsFavorite)
	assert.Equal(t, "covers/abc.jpg", book.ImagePath)

	books := store.FilteredBooks("")
	require.Len(t, books, 1)
	assert.Equal(t, book, books[0])
	assert.Equal(t, 1, slot.Writes())
}

func TestStore_AddDefaultsGenreToFiction(t *testing.T) {
	store, _ := newTestStore(t)

	book, err := store.Add(context.Background(), models.BookInput{Title: "Dune", Author: "Frank Herbert", TotalPages: "412"})
	require.NoError(t, err)
	assert.Equal(t, models.GenreFiction, book.Genre)
}

func TestStore_AddAppendsInOrderWithUniqueIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	titles := []string{"A", "B", "C"}
	ids := make(map[string]bool)
	for _, title := range titles {
		book, err := store.Add(ctx, models.BookInput{Title: title, Author: "X", TotalPages: "10"})
		require.NoError(t, err)
		assert.False(t, ids[book.ID], "duplicate id %s", book.ID)
		ids[book.ID] = true
	}

	books := store.FilteredBooks("")
	require.Len(t, books, 3)
	for i, title := range titles {
		assert.Equal(t, title, books[i].Title)
	}
}

func TestStore_AddValidation(t *testing.T) {
	testCases := []struct {
		name   string
		input  models.BookInput
		reason string
		field  string
	}{
		{"empty title", models.BookInput{Author: "A", TotalPages: "10"}, reasonTitle, FieldTitle},
		{"blank title", models.BookInput{Title: "   ", Author: "A", TotalPages: "10"}, reasonTitle, FieldTitle},
		{"empty author", models.BookInput{Title: "T", TotalPages: "10"}, reasonAuthor, FieldAuthor},
		{"title checked before author", models.BookInput{TotalPages: "10"}, reasonTitle, FieldTitle},
		{"empty pages", models.BookInput{Title: "T", Author: "A"}, reasonPages, FieldTotalPages},
		{"non numeric pages", models.BookInput{Title: "T", Author: "A", TotalPages: "many"}, reasonPages, FieldTotalPages},
		{"zero pages", models.BookInput{Title: "T", Author: "A", TotalPages: "0"}, reasonPages, FieldTotalPages},
		{"negative pages", models.BookInput{Title: "T", Author: "A", TotalPages: "-5"}, reasonPages, FieldTotalPages},
		{"pages beyond 32 bits", models.BookInput{Title: "T", Author: "A", TotalPages: "3000000000"}, reasonPages, FieldTotalPages},
		{"unknown genre", models.BookInput{Title: "T", Author: "A", TotalPages: "5", Genre: "Poetry"}, reasonGenre, FieldGenre},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, slot := newTestStore(t)

			_, err := store.Add(context.Background(), tc.input)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.reason, ve.Reason)
			assert.Equal(t, tc.field, ve.Field)
			assert.Empty(t, store.FilteredBooks(""))
			assert.Equal(t, 0, slot.Writes())
		})
	}
}

func TestStore_AddRejectsDuplicates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, orwell())
	require.NoError(t, err)

	_, err = store.Add(ctx, models.BookInput{
		Title:      "1984",
		Author:     "GEORGE ORWELL",
		Genre:      models.GenreFiction,
		TotalPages: "328",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, store.FilteredBooks(""), 1)
}

func TestStore_AddSameTitleDifferentFieldsIsNotDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, orwell())
	require.NoError(t, err)

	variants := []models.BookInput{
		{Title: "1984", Author: "George Orwell", Genre: models.GenreAcademic, TotalPages: "328"},
		{Title: "1984", Author: "George Orwell", Genre: models.GenreFiction, TotalPages: "329"},
		{Title: "1984", Author: "Someone Else", Genre: models.GenreFiction, TotalPages: "328"},
	}
	for _, in := range variants {
		_, err := store.Add(ctx, in)
		assert.NoError(t, err)
	}
	assert.Len(t, store.FilteredBooks(""), 4)
}

func TestStore_ToggleFavoriteTwiceRestores(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	book, err := store.Add(ctx, orwell())
	require.NoError(t, err)

	require.NoError(t, store.ToggleFavorite(ctx, book.ID))
	got, err := store.Get(book.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	require.NoError(t, store.ToggleFavorite(ctx, book.ID))
	got, err = store.Get(book.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)
}

func TestStore_UpdateProgressClamps(t *testing.T) {
	testCases := []struct {
		name     string
		input    int
		expected int
	}{
		{"within range", 150, 150},
		{"exactly total", 328, 328},
		{"above total", 400, 328},
		{"negative", -3, 0},
		{"zero", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			ctx := context.Background()
			book, err := store.Add(ctx, orwell())
			require.NoError(t, err)

			require.NoError(t, store.UpdateProgress(ctx, book.ID, tc.input))

			got, err := store.Get(book.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.PagesRead)
		})
	}
}

func TestStore_CompletionPercentage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	book, err := store.Add(ctx, models.BookInput{Title: "Half", Author: "A", TotalPages: "100"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, book.ID, 50))

	assert.Equal(t, 50.0, store.CompletionPercentage(book.ID))
	assert.Equal(t, 0.0, store.CompletionPercentage("missing"))
}

func TestStore_CompletionPercentageZeroPages(t *testing.T) {
	slot := stubs.NewMockSlot()
	require.NoError(t, slot.Set(context.Background(), SnapshotKey,
		[]byte(`[{"id":"3f9a4c1e-7b2d-4e8f-9a6b-1c2d3e4f5a6b","title":"Empty","author":"A","genre":"Fiction"}]`)))

	store, err := New(context.Background(), slot, zap.NewNop())
	require.NoError(t, err)

	books := store.FilteredBooks("")
	require.Len(t, books, 1)
	assert.Equal(t, 0, books[0].TotalPages)
	assert.Equal(t, 0.0, store.CompletionPercentage(books[0].ID))
}

func TestStore_NotFound(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()

	operations := map[string]func() error{
		"toggle":   func() error { return store.ToggleFavorite(ctx, "nope") },
		"progress": func() error { return store.UpdateProgress(ctx, "nope", 1) },
		"cover":    func() error { return store.SetImagePath(ctx, "nope", "x.jpg") },
		"delete":   func() error { return store.Delete(ctx, "nope") },
		"get": func() error {
			_, err := store.Get("nope")
			return err
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			err := op()
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "nope", nf.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
	assert.Equal(t, 0, slot.Writes())
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, models.BookInput{Title: "First", Author: "A", TotalPages: "10"})
	require.NoError(t, err)
	second, err := store.Add(ctx, models.BookInput{Title: "Second", Author: "A", TotalPages: "10"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, first.ID))

	books := store.FilteredBooks("")
	require.Len(t, books, 1)
	assert.Equal(t, second.ID, books[0].ID)
}

func TestStore_FilteredBooks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inputs := []models.BookInput{
		{Title: "1984", Author: "George Orwell", Genre: models.GenreFiction, TotalPages: "328"},
		{Title: "Sapiens", Author: "Yuval Noah Harari", Genre: models.GenreNonFiction, TotalPages: "443"},
		{Title: "Brave New World", Author: "Aldous Huxley", Genre: models.GenreFiction, TotalPages: "268"},
		{Title: "SICP", Author: "Abelson", Genre: models.GenreAcademic, TotalPages: "657"},
	}
	for _, in := range inputs {
		_, err := store.Add(ctx, in)
		require.NoError(t, err)
	}

	fiction := store.FilteredBooks(models.GenreFiction)
	require.Len(t, fiction, 2)
	assert.Equal(t, "1984", fiction[0].Title)
	assert.Equal(t, "Brave New World", fiction[1].Title)

	assert.Len(t, store.FilteredBooks(models.GenreAcademic), 1)
	assert.Len(t, store.FilteredBooks(""), 4)
}

func TestStore_FilteredBooksReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)

	book, err := store.Add(context.Background(), orwell())
	require.NoError(t, err)

	books := store.FilteredBooks("")
	books[0].Title = "changed"
	books[0].PagesRead = 999

	got, err := store.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "1984", got.Title)
	assert.Equal(t, 0, got.PagesRead)
}

func TestStore_Grouped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Add(ctx, models.BookInput{Title: "A", Author: "X", TotalPages: "10"})
	b, _ := store.Add(ctx, models.BookInput{Title: "B", Author: "X", TotalPages: "10"})
	c, _ := store.Add(ctx, models.BookInput{Title: "C", Author: "X", TotalPages: "10", Genre: models.GenreAcademic})
	require.NoError(t, store.ToggleFavorite(ctx, b.ID))
	require.NoError(t, store.ToggleFavorite(ctx, c.ID))

	favorites, others := store.Grouped("")
	require.Len(t, favorites, 2)
	assert.Equal(t, b.ID, favorites[0].ID)
	assert.Equal(t, c.ID, favorites[1].ID)
	require.Len(t, others, 1)
	assert.Equal(t, a.ID, others[0].ID)

	favorites, others = store.Grouped(models.GenreAcademic)
	assert.Len(t, favorites, 1)
	assert.Empty(t, others)
}

func TestStore_Stats(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Add(ctx, models.BookInput{Title: "A", Author: "X", TotalPages: "10"})
	b, _ := store.Add(ctx, models.BookInput{Title: "B", Author: "X", TotalPages: "20", Genre: models.GenreAcademic})
	require.NoError(t, store.UpdateProgress(ctx, a.ID, 10))
	require.NoError(t, store.UpdateProgress(ctx, b.ID, 5))
	require.NoError(t, store.ToggleFavorite(ctx, b.ID))

	stats := store.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Favorites)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 15, stats.PagesRead)
	assert.Equal(t, 1, stats.ByGenre[models.GenreFiction])
	assert.Equal(t, 0, stats.ByGenre[models.GenreNonFiction])
	assert.Equal(t, 1, stats.ByGenre[models.GenreAcademic])
}

func TestStore_PersistRoundTrip(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()

	a, err := store.Add(ctx, orwell())
	require.NoError(t, err)
	b, err := store.Add(ctx, models.BookInput{Title: "Sapiens", Author: "Harari", Genre: models.GenreNonFiction, TotalPages: "443", ImagePath: "b.jpg"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, a.ID, 120))
	require.NoError(t, store.ToggleFavorite(ctx, b.ID))
	require.NoError(t, store.Persist(ctx))

	restored, err := New(ctx, slot, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, store.FilteredBooks(""), restored.FilteredBooks(""))
}

func TestStore_PersistenceFailureKeepsMutation(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()
	diskFull := errors.New("disk full")

	slot.FailWrites(diskFull)

	book, err := store.Add(ctx, orwell())
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, diskFull)
	assert.True(t, IsPersistence(err))
	assert.NotEmpty(t, book.ID, "created book is returned alongside the persistence error")
	assert.Len(t, store.FilteredBooks(""), 1)

	err = store.UpdateProgress(ctx, book.ID, 10)
	assert.True(t, IsPersistence(err))
	got, _ := store.Get(book.ID)
	assert.Equal(t, 10, got.PagesRead)

	slot.FailWrites(nil)
	require.NoError(t, store.Persist(ctx))

	restored, err := New(ctx, slot, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, store.FilteredBooks(""), restored.FilteredBooks(""))
}

func TestStore_RestoreReadFailure(t *testing.T) {
	slot := stubs.NewMockSlot()
	slot.FailReads(errors.New("connection refused"))

	_, err := New(context.Background(), slot, zap.NewNop())
	assert.True(t, IsPersistence(err))
}

func TestStore_RestoreIgnoresUnreadableSnapshot(t *testing.T) {
	slot := stubs.NewMockSlot()
	require.NoError(t, slot.Set(context.Background(), SnapshotKey, []byte(`{"not":"an array"}`)))

	store, err := New(context.Background(), slot, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, store.FilteredBooks(""))
}

func TestStore_LargestPageCountSurvivesRestore(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()

	book, err := store.Add(ctx, models.BookInput{Title: "Big", Author: "A", TotalPages: "2147483647"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, book.ID, 100))

	restored, err := New(ctx, slot, zap.NewNop())
	require.NoError(t, err)

	got, err := restored.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2147483647, got.TotalPages)
	assert.Equal(t, 100, got.PagesRead)
}

func TestStore_FlushKeepsUnreadableSnapshot(t *testing.T) {
	slot := stubs.NewMockSlot()
	ctx := context.Background()
	original := []byte(`{"books":[{"title":"keep me"}]}`)
	require.NoError(t, slot.Set(ctx, SnapshotKey, original))

	store, err := New(ctx, slot, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Flush(ctx))

	data, ok, err := slot.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, original, data)
}

func TestStore_FlushWritesPendingMutation(t *testing.T) {
	store, slot := newTestStore(t)
	ctx := context.Background()

	slot.FailWrites(errors.New("disk full"))
	_, err := store.Add(ctx, orwell())
	require.True(t, IsPersistence(err))
	require.Equal(t, 0, slot.Writes())

	slot.FailWrites(nil)
	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 1, slot.Writes())

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 1, slot.Writes())
}

// Scenario from the reading tracker: add, overshoot progress, complete, delete.
func TestStore_OrwellScenario(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	book, err := store.Add(ctx, orwell())
	require.NoError(t, err)

	require.NoError(t, store.UpdateProgress(ctx, book.ID, 400))
	got, err := store.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 328, got.PagesRead)
	assert.True(t, got.IsCompleted())
	assert.Equal(t, 100.0, store.CompletionPercentage(book.ID))

	require.NoError(t, store.Delete(ctx, book.ID))
	assert.ErrorIs(t, store.ToggleFavorite(ctx, book.ID), ErrNotFound)
}
