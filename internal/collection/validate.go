package collection

import (
	"errors"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"readinglist/internal/models"
)

const (
	reasonTitle  = "Please enter a book title."
	reasonAuthor = "Please enter the author's name."
	reasonPages  = "Please enter a valid number of pages."
	reasonGenre  = "Please select a genre."
)

// validated is a BookInput that passed validation, with text trimmed and pages parsed
type validated struct {
	title      string
	author     string
	genre      models.Genre
	totalPages int
	imagePath  string
}

// maxPages keeps page counts within 32 bits, the range restored from snapshots
const maxPages = math.MaxInt32

var positivePages = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	pages, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || pages <= 0 || pages > maxPages {
		return errors.New(reasonPages)
	}
	return nil
})

var knownGenre = validation.By(func(value interface{}) error {
	g, _ := value.(models.Genre)
	if g != "" && !g.IsValid() {
		return errors.New(reasonGenre)
	}
	return nil
})

// validateInput checks a candidate and reports the first failing field
// in form order: title, author, pages, genre.
func validateInput(in models.BookInput) (validated, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error(reasonTitle)),
		validation.Field(&in.Author, validation.Required.Error(reasonAuthor)),
		validation.Field(&in.TotalPages, validation.Required.Error(reasonPages), positivePages),
		validation.Field(&in.Genre, knownGenre),
	)
	if err != nil {
		return validated{}, firstError(err)
	}

	genre := in.Genre
	if genre == "" {
		genre = models.GenreFiction
	}
	pages, _ := strconv.Atoi(strings.TrimSpace(in.TotalPages))

	return validated{
		title:      in.Title,
		author:     in.Author,
		genre:      genre,
		totalPages: pages,
		imagePath:  strings.TrimSpace(in.ImagePath),
	}, nil
}

func firstError(err error) *ValidationError {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Reason: err.Error()}
	}
	for _, field := range []string{FieldTitle, FieldAuthor, FieldTotalPages, FieldGenre} {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			return &ValidationError{Field: field, Reason: fe.Error()}
		}
	}
	return &ValidationError{Reason: err.Error()}
}
