package db

import (
	"context"

	"github.com/trellis-ml/trellis/pkg/domain"
)

type TrialInterface interface {
	// Create registers a new trial under an experiment.
	//
	// Returns
	//
	// - error: ErrAlreadyExists when a trial with the same name exists,
	// ErrMissing when the experiment does not exist.
	Create(ctx context.Context, trial domain.TrialBody) error

	// Get retrieves trials by name, with their attached components.
	//
	// Components are ordered by attachment (oldest first).
	// Names not found are simply not in the returned map.
	Get(ctx context.Context, names []string) (map[string]domain.Trial, error)

	// Find lists trials, oldest first.
	//
	// When experimentName is not empty, only trials of that experiment
	// are listed.
	Find(ctx context.Context, experimentName string) ([]domain.Trial, error)
}
