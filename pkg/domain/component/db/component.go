package db

import (
	"context"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
)

type ComponentInterface interface {
	// Create registers a new trial component in Created status.
	//
	// Returns
	//
	// - error: ErrAlreadyExists when the name is taken.
	Create(ctx context.Context, component domain.ComponentBody) error

	// Get retrieves components by name, with parameters, artifacts and
	// metric series. Names not found are simply not in the map.
	Get(ctx context.Context, names []string) (map[string]domain.TrialComponent, error)

	// Find lists components matching the query, oldest first.
	//
	// All set fields of the query must match; zero-value fields match
	// anything.
	Find(ctx context.Context, query domain.ComponentFindQuery) ([]domain.TrialComponent, error)

	// Attach associates a component with a trial.
	//
	// Attaching an already-attached pair is a no-op; there is exactly
	// one association afterwards either way.
	//
	// Returns
	//
	// - error: ErrMissing when the trial or the component does not exist.
	Attach(ctx context.Context, trialName string, componentName string) error

	// LogParameters merges parameters into the component.
	//
	// Keys already logged are overwritten (last write wins).
	//
	// Returns
	//
	// - error: ErrMissing when the component does not exist.
	LogParameters(ctx context.Context, componentName string, parameters map[string]domain.ParamValue) error

	// LogInput records an input artifact. Same-named artifacts are
	// overwritten.
	LogInput(ctx context.Context, componentName string, artifact domain.Artifact) error

	// LogOutput records an output artifact. Same-named artifacts are
	// overwritten.
	LogOutput(ctx context.Context, componentName string, artifact domain.Artifact) error

	// AppendObservations appends observations to a metric series,
	// keeping logged order.
	//
	// Returns
	//
	// - error: ErrMissing when the component does not exist.
	AppendObservations(ctx context.Context, componentName string, metric string, observations []domain.Observation) error

	// Finish finalizes the component: set a terminal status and the end
	// time.
	//
	// Returns
	//
	// - error: ErrMissing when the component does not exist,
	// ErrInvalidStatusTransition when status is not terminal or the
	// component is finalized already.
	Finish(ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time) error
}
