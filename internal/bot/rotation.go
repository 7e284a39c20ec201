package bot

import (
	"readinglist/internal/models"
)

// ComputeNextBook suggests which book to pick up next.
//
// Selection rules:
// 1. Completed books are never suggested
// 2. Favorites come before other books
// 3. Among equals, the book with the highest completion wins
// 4. Remaining ties keep the stored order
//
// It returns false when every book is completed or the list is empty.
func ComputeNextBook(books []models.Book) (models.Book, bool) {
	var best models.Book
	found := false

	for _, book := range books {
		if book.IsCompleted() {
			continue
		}
		if !found || ranksBefore(book, best) {
			best = book
			found = true
		}
	}
	return best, found
}

// ranksBefore reports whether a strictly outranks b
func ranksBefore(a, b models.Book) bool {
	if a.IsFavorite != b.IsFavorite {
		return a.IsFavorite
	}
	return progress(a) > progress(b)
}

func progress(b models.Book) float64 {
	if b.TotalPages <= 0 {
		return 0
	}
	return float64(b.PagesRead) / float64(b.TotalPages)
}
