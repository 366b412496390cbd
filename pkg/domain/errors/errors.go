package errors

import "errors"

// Sentinel errors of the Trellis domain.
//
// Store implementations wrap these so that callers can test with
// errors.Is regardless of the backing store.
var (
	// ErrMissing: a referenced experiment, trial or component does not exist.
	ErrMissing = errors.New("missing")

	// ErrAlreadyExists: create was requested with a name already taken.
	// The existing record is left unmodified.
	ErrAlreadyExists = errors.New("already exists")

	// ErrTooMuch: a lookup expected to be unique returned several records.
	ErrTooMuch = errors.New("too much")

	// ErrConflictingConfiguration: a configuration value was set for a
	// feature which is not enabled (e.g. spot max-wait without spot).
	ErrConflictingConfiguration = errors.New("conflicting configuration")

	// ErrInvalidStatusTransition: a trial component status change was
	// requested which the status lifecycle does not allow.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
