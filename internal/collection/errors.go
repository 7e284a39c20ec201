package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned by Add when an equivalent book is already tracked
	ErrDuplicate = errors.New("book already exists")

	// ErrNotFound matches every *NotFoundError via errors.Is
	ErrNotFound = errors.New("book not found")
)

// Fields reported by ValidationError
const (
	FieldTitle      = "title"
	FieldAuthor     = "author"
	FieldTotalPages = "totalPages"
	FieldGenre      = "genre"
)

// ValidationError names the first invalid field and carries a
// human-readable reason suitable for display
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports a stale or unknown book id
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a failed snapshot read or write.
// The in-memory collection keeps the mutation that triggered the write.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist collection: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// IsPersistence reports whether err is a *PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
