package domain

import (
	"time"

	"github.com/trellis-ml/trellis/pkg/utils/cmp"
)

// TrialBody is the core part of a trial.
type TrialBody struct {
	// Name is unique across all trials.
	Name string

	// ExperimentName points the experiment this trial belongs to.
	ExperimentName string

	CreatedAt time.Time
}

func (tb TrialBody) Equal(other TrialBody) bool {
	return tb.Name == other.Name &&
		tb.ExperimentName == other.ExperimentName &&
		tb.CreatedAt.Equal(other.CreatedAt)
}

// Trial is one tracked training-run configuration within an experiment.
type Trial struct {
	TrialBody

	// Components are trial components attached to this trial,
	// in attachment order.
	Components []ComponentBody
}

func (t Trial) Equal(other Trial) bool {
	return t.TrialBody.Equal(other.TrialBody) &&
		cmp.SliceEqWith(
			t.Components, other.Components,
			func(a, b ComponentBody) bool { return a.Equal(b) },
		)
}
