package domain

import "time"

// Experiment is a top-level grouping of related training runs.
//
// It is immutable after creation. Trials refer to it by name;
// the Experiment does not contain them.
type Experiment struct {
	// Name is unique across all experiments.
	Name string

	Description string

	CreatedAt time.Time
}

func (e Experiment) Equal(other Experiment) bool {
	return e.Name == other.Name &&
		e.Description == other.Description &&
		e.CreatedAt.Equal(other.CreatedAt)
}
