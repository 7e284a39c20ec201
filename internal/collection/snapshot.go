package collection

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"readinglist/internal/models"
)

// SnapshotKey names the slot entry holding the serialized collection
const SnapshotKey = "bookList"

// snapshotRecord is the on-disk shape of one book. imagePath is always written,
// empty meaning no cover.
type snapshotRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      string `json:"genre"`
	TotalPages int    `json:"totalPages"`
	PagesRead  int    `json:"pagesRead"`
	IsFavorite bool   `json:"isFavorite"`
	ImagePath  string `json:"imagePath"`
}

func encodeSnapshot(books []models.Book) ([]byte, error) {
	records := make([]snapshotRecord, 0, len(books))
	for _, b := range books {
		records = append(records, snapshotRecord{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.Author,
			Genre:      b.Genre.String(),
			TotalPages: b.TotalPages,
			PagesRead:  b.PagesRead,
			IsFavorite: b.IsFavorite,
			ImagePath:  b.ImagePath,
		})
	}
	return json.Marshal(records)
}

// decodeSnapshot parses a stored document leniently. Every field falls back to its
// default when missing or of the wrong type, and ids that are missing, malformed or
// already taken are replaced by fresh ones. skipped counts array elements that were
// not objects.
func decodeSnapshot(data []byte) (books []models.Book, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	books = make([]models.Book, 0, len(raw))
	for _, elem := range raw {
		var fields map[string]any
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			skipped++
			continue
		}

		book := models.Book{
			ID:         stringField(fields, "id"),
			Title:      stringField(fields, "title"),
			Author:     stringField(fields, "author"),
			Genre:      models.GenreFromSnapshot(stringField(fields, "genre")),
			TotalPages: intField(fields, "totalPages"),
			PagesRead:  intField(fields, "pagesRead"),
			IsFavorite: boolField(fields, "isFavorite"),
			ImagePath:  stringField(fields, "imagePath"),
		}

		if _, err := uuid.Parse(book.ID); err != nil || seen[book.ID] {
			book.ID = uuid.NewString()
		}
		seen[book.ID] = true

		book.TotalPages = max(book.TotalPages, 0)
		book.PagesRead = clamp(book.PagesRead, 0, book.TotalPages)

		books = append(books, book)
	}
	return books, skipped, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func intField(fields map[string]any, key string) int {
	f, ok := fields[key].(float64)
	if !ok || f != math.Trunc(f) || f > maxPages || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func boolField(fields map[string]any, key string) bool {
	b, _ := fields[key].(bool)
	return b
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
