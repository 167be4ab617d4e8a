package errors

import (
	"errors"
	"fmt"
)

// FormatError means the input cannot be imported at all: it is unreadable,
// has no header, or the header is not a LibraryThing export.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError creates a FormatError, optionally wrapping the cause.
func NewFormatError(reason string, err error) *FormatError {
	return &FormatError{Reason: reason, Err: err}
}

// IsFormatError reports whether err is a FormatError (even when wrapped).
func IsFormatError(err error) bool {
	var formatErr *FormatError
	return errors.As(err, &formatErr)
}

// RowLimitError is recorded once when an import reaches its row cap.
type RowLimitError struct {
	Limit int
}

func (e *RowLimitError) Error() string {
	return fmt.Sprintf("row limit of %d reached, remaining rows were not imported", e.Limit)
}

// IsRowLimitError reports whether err is a RowLimitError (even when wrapped).
func IsRowLimitError(err error) bool {
	var limitErr *RowLimitError
	return errors.As(err, &limitErr)
}
