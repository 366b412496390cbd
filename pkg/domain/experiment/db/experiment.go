package db

import (
	"context"

	"github.com/trellis-ml/trellis/pkg/domain"
)

type ExperimentInterface interface {
	// Create registers a new experiment.
	//
	// Returns
	//
	// - error: ErrAlreadyExists when an experiment with the same name
	// is registered. The existing record is left as it is.
	Create(ctx context.Context, experiment domain.Experiment) error

	// Get retrieves experiments by name.
	//
	// Returns
	//
	// - map[string]domain.Experiment: mapping name->Experiment.
	// Names not found are simply not in the map.
	//
	// - error
	Get(ctx context.Context, names []string) (map[string]domain.Experiment, error)

	// Find lists all experiments, oldest first.
	Find(ctx context.Context) ([]domain.Experiment, error)
}
