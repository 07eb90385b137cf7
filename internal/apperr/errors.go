// Package apperr defines the sentinel error kinds shared across layers.
package apperr

import "errors"

var (
	// ErrValidation marks invalid input: unknown enum values, malformed
	// identifiers or date bounds, empty required fields.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced note that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate note id or duplicate link triple.
	ErrConflict = errors.New("conflict")
	// ErrStorage marks file or index I/O failures and corrupt-file decodes.
	ErrStorage = errors.New("storage error")
)
