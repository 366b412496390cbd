// Package tracker is the scoped bookkeeping handle of one trial
// component: create it, log into it, finalize it.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/utils/strs"
)

// Registry is the tracking store the tracker writes through.
//
// Implemented by the REST client; on the server side, by the component
// store directly.
type Registry interface {
	CreateComponent(ctx context.Context, component domain.ComponentBody) error
	LogParameters(ctx context.Context, componentName string, parameters map[string]domain.ParamValue) error
	LogInput(ctx context.Context, componentName string, artifact domain.Artifact) error
	LogOutput(ctx context.Context, componentName string, artifact domain.Artifact) error
	AttachToTrial(ctx context.Context, trialName string, componentName string) error
	FinishComponent(ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time) error
}

// Tracker scopes logging to one trial component.
//
// Close always finalizes the component, whatever happened in between.
type Tracker struct {
	registry Registry
	name     string
	now      func() time.Time
	closed   bool
}

type Option func(*Tracker) *Tracker

// WithClock replaces the wall clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) *Tracker {
		t.now = now
		return t
	}
}

// WithName fixes the component name instead of generating one.
func WithName(name string) Option {
	return func(t *Tracker) *Tracker {
		t.name = name
		return t
	}
}

// Start registers a new trial component in Created status and returns
// its tracker.
//
// The component name is generated unless WithName is given.
func Start(ctx context.Context, registry Registry, displayName string, options ...Option) (*Tracker, error) {
	t := &Tracker{registry: registry, now: time.Now}
	for _, opt := range options {
		t = opt(t)
	}

	if t.name == "" {
		suffix, err := strs.RandomHex(12)
		if err != nil {
			return nil, err
		}
		t.name = fmt.Sprintf("comp-%s", suffix)
	}

	if err := registry.CreateComponent(ctx, domain.ComponentBody{
		Name:        t.name,
		DisplayName: displayName,
		Status:      domain.Created,
		StartedAt:   t.now(),
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// Name is the generated (or fixed) component name.
func (t *Tracker) Name() string {
	return t.name
}

func (t *Tracker) LogParameters(ctx context.Context, parameters map[string]domain.ParamValue) error {
	return t.registry.LogParameters(ctx, t.name, parameters)
}

func (t *Tracker) LogInput(ctx context.Context, name string, mediaType string, uri string) error {
	return t.registry.LogInput(ctx, t.name, domain.Artifact{
		Name: name, MediaType: mediaType, URI: uri,
	})
}

func (t *Tracker) LogOutput(ctx context.Context, name string, mediaType string, uri string) error {
	return t.registry.LogOutput(ctx, t.name, domain.Artifact{
		Name: name, MediaType: mediaType, URI: uri,
	})
}

func (t *Tracker) AttachToTrial(ctx context.Context, trialName string) error {
	return t.registry.AttachToTrial(ctx, trialName, t.name)
}

// Close finalizes the component: Completed when cause is nil, Failed
// otherwise. Closing twice is a no-op.
func (t *Tracker) Close(ctx context.Context, cause error) error {
	if t.closed {
		return nil
	}
	t.closed = true

	status := domain.Completed
	if cause != nil {
		status = domain.Failed
	}
	return t.registry.FinishComponent(ctx, t.name, status, t.now())
}

// Track runs task under a fresh tracker and finalizes it on every
// path: Completed when task returns nil, Failed when it errors or
// panics. Panics are rethrown after finalizing.
func Track(
	ctx context.Context,
	registry Registry,
	displayName string,
	task func(context.Context, *Tracker) error,
	options ...Option,
) error {
	t, err := Start(ctx, registry, displayName, options...)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			t.Close(ctx, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	taskErr := task(ctx, t)
	if closeErr := t.Close(ctx, taskErr); taskErr == nil {
		return closeErr
	}
	return taskErr
}
