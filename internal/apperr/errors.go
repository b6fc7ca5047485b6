// Package apperr defines the sentinel errors shared across the engine and
// its surfaces.
package apperr

import "errors"

var (
	// ErrNotFound marks a note identity with no file behind it. It is a
	// distinct sentinel because probing for absence is routine, not
	// exceptional.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an optimistic-concurrency checksum mismatch.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists marks an attempt to create a note over an existing one.
	ErrAlreadyExists = errors.New("already exists")
)
