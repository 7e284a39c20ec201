package models

import "strings"

// Genre is the closed set of book genres. The label of each genre is its canonical name.
type Genre string

const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "NonFiction"
	GenreAcademic   Genre = "Academic"
)

// AllGenres returns the genres in display order
func AllGenres() []Genre {
	return []Genre{GenreFiction, GenreNonFiction, GenreAcademic}
}

func (g Genre) String() string {
	return string(g)
}

// IsValid reports whether g is one of the known genres
func (g Genre) IsValid() bool {
	switch g {
	case GenreFiction, GenreNonFiction, GenreAcademic:
		return true
	}
	return false
}

// ParseGenre matches a genre label case-insensitively.
// Separators are ignored so "Non-Fiction" and "non fiction" both resolve to NonFiction.
func ParseGenre(s string) (Genre, bool) {
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	for _, g := range AllGenres() {
		if strings.EqualFold(normalized, string(g)) {
			return g, true
		}
	}
	return "", false
}

// GenreFromSnapshot parses a stored genre, falling back to Fiction
func GenreFromSnapshot(s string) Genre {
	if g, ok := ParseGenre(s); ok {
		return g
	}
	return GenreFiction
}

// Favoritable is implemented by anything that carries a favorite flag
type Favoritable interface {
	Favorite() bool
	SetFavorite(favorite bool)
}

// ToggleFavorite flips the favorite flag of f
func ToggleFavorite(f Favoritable) {
	f.SetFavorite(!f.Favorite())
}

// Book represents a tracked reading item
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      Genre  `json:"genre"`
	TotalPages int    `json:"totalPages"`
	PagesRead  int    `json:"pagesRead"`
	IsFavorite bool   `json:"isFavorite"`
	ImagePath  string `json:"imagePath,omitempty"` // empty when no cover is attached
}

func (b *Book) Favorite() bool {
	return b.IsFavorite
}

func (b *Book) SetFavorite(favorite bool) {
	b.IsFavorite = favorite
}

// HasCover reports whether a cover image is attached
func (b Book) HasCover() bool {
	return b.ImagePath != ""
}

// IsCompleted reports whether every page has been read
func (b Book) IsCompleted() bool {
	return b.TotalPages > 0 && b.PagesRead >= b.TotalPages
}

// BookInput is an unvalidated candidate for a new book, as typed by the user.
// TotalPages stays textual so that parsing failures surface as validation errors.
type BookInput struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      Genre  `json:"genre"`
	TotalPages string `json:"totalPages"`
	ImagePath  string `json:"imagePath,omitempty"`
}

// Stats summarizes a collection
type Stats struct {
	Total     int           `json:"total"`
	Favorites int           `json:"favorites"`
	Completed int           `json:"completed"`
	PagesRead int           `json:"pagesRead"`
	ByGenre   map[Genre]int `json:"byGenre"`
}
