package rest

import (
	"context"
	"time"

	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/tracker"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
)

// TrackingRegistry adapts a TrellisClient into the tracking store a
// tracker.Tracker writes through, so user code can do
//
//	tracker.Track(ctx, rest.TrackingRegistry(client), "preprocess", ...)
//
// against a remote server.
func TrackingRegistry(c TrellisClient) tracker.Registry {
	return &registry{client: c}
}

type registry struct {
	client TrellisClient
}

var _ tracker.Registry = &registry{}

func (r *registry) CreateComponent(ctx context.Context, component domain.ComponentBody) error {
	_, err := r.client.RegisterComponent(ctx, apicomponents.Spec{
		Name:        component.Name,
		DisplayName: component.DisplayName,
		StartedAt:   rfctime.New(component.StartedAt),
	})
	return err
}

func (r *registry) LogParameters(
	ctx context.Context, componentName string, parameters map[string]domain.ParamValue,
) error {
	params := map[string]apicomponents.ParamValue{}
	for name, v := range parameters {
		params[name] = apicomponents.ComposeParamValue(v)
	}
	return r.client.LogParameters(ctx, componentName, params)
}

func (r *registry) LogInput(
	ctx context.Context, componentName string, artifact domain.Artifact,
) error {
	return r.client.LogInput(ctx, componentName, apicomponents.ComposeArtifact(artifact))
}

func (r *registry) LogOutput(
	ctx context.Context, componentName string, artifact domain.Artifact,
) error {
	return r.client.LogOutput(ctx, componentName, apicomponents.ComposeArtifact(artifact))
}

func (r *registry) AttachToTrial(
	ctx context.Context, trialName string, componentName string,
) error {
	return r.client.AttachComponent(ctx, trialName, componentName)
}

func (r *registry) FinishComponent(
	ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time,
) error {
	_, err := r.client.FinishComponent(ctx, componentName, string(status), endedAt)
	return err
}
