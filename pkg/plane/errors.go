// Package plane hosts the training/serving plane: the cluster and
// object storage the tracking server submits work to.
package plane

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing: a cluster resource expected to exist does not.
	ErrMissing = errors.New("missing")

	// ErrConflict: a cluster resource to be created already exists.
	ErrConflict = errors.New("conflict")

	// ErrDeadlineExceeded: a resource did not satisfy its requirement
	// in time.
	ErrDeadlineExceeded = errors.New("deadline exceeded")
)

type wrapped struct {
	message string
	base    error
	cause   error
}

func (w wrapped) Error() string {
	if w.message == "" {
		return fmt.Sprintf("%s: %s", w.base, w.cause)
	}
	return fmt.Sprintf("%s: %s: %s", w.base, w.message, w.cause)
}

func (w wrapped) Unwrap() []error {
	return []error{w.base, w.cause}
}

func NewMissingCausedBy(message string, cause error) error {
	return wrapped{message: message, base: ErrMissing, cause: cause}
}

func NewConflictCausedBy(message string, cause error) error {
	return wrapped{message: message, base: ErrConflict, cause: cause}
}
