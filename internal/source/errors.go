package source

import (
	"errors"
	"fmt"
)

// ErrInputRejected marks every validation failure at the ingestion boundary.
var ErrInputRejected = errors.New("input rejected")

// ValidationError names the offending field. It matches ErrInputRejected
// with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInputRejected }

func reject(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
