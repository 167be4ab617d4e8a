package book

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound is returned when a source answers 404 for an ISBN.
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidISBN is returned when the provided ISBN is invalid.
	ErrInvalidISBN = errors.New("invalid ISBN")
)

// StatusError is a non-success HTTP status that is not worth retrying.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}
