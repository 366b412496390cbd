package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/tracker"
)

type mockRegistry struct {
	components []domain.ComponentBody
	parameters []map[string]domain.ParamValue
	inputs     []domain.Artifact
	outputs    []domain.Artifact
	attached   []struct{ Trial, Component string }
	finished   []struct {
		Component string
		Status    domain.ComponentStatus
		EndedAt   time.Time
	}

	createErr error
	finishErr error
}

var _ tracker.Registry = &mockRegistry{}

func (m *mockRegistry) CreateComponent(ctx context.Context, component domain.ComponentBody) error {
	m.components = append(m.components, component)
	return m.createErr
}

func (m *mockRegistry) LogParameters(ctx context.Context, componentName string, parameters map[string]domain.ParamValue) error {
	m.parameters = append(m.parameters, parameters)
	return nil
}

func (m *mockRegistry) LogInput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	m.inputs = append(m.inputs, artifact)
	return nil
}

func (m *mockRegistry) LogOutput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	m.outputs = append(m.outputs, artifact)
	return nil
}

func (m *mockRegistry) AttachToTrial(ctx context.Context, trialName string, componentName string) error {
	m.attached = append(m.attached, struct{ Trial, Component string }{trialName, componentName})
	return nil
}

func (m *mockRegistry) FinishComponent(ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time) error {
	m.finished = append(m.finished, struct {
		Component string
		Status    domain.ComponentStatus
		EndedAt   time.Time
	}{componentName, status, endedAt})
	return m.finishErr
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("it creates a component in Created status", func(t *testing.T) {
		registry := &mockRegistry{}
		startedAt := time.Date(2024, 10, 30, 12, 0, 0, 0, time.UTC)

		testee, err := tracker.Start(
			ctx, registry, "train resnet",
			tracker.WithClock(fixedClock(startedAt)),
		)
		if err != nil {
			t.Fatalf("Start returns error: %s", err)
		}

		if len(registry.components) != 1 {
			t.Fatalf("CreateComponent is called %d times", len(registry.components))
		}
		created := registry.components[0]
		if created.Name != testee.Name() {
			t.Errorf("created name %s != tracker name %s", created.Name, testee.Name())
		}
		if created.DisplayName != "train resnet" {
			t.Errorf("display name: %s", created.DisplayName)
		}
		if created.Status != domain.Created {
			t.Errorf("status: %s", created.Status)
		}
		if !created.StartedAt.Equal(startedAt) {
			t.Errorf("started at: %s", created.StartedAt)
		}
	})

	t.Run("when create fails, it returns the error", func(t *testing.T) {
		wantErr := errors.New("fake create error")
		registry := &mockRegistry{createErr: wantErr}

		if _, err := tracker.Start(ctx, registry, "x"); !errors.Is(err, wantErr) {
			t.Errorf("unexpected error: %s", err)
		}
	})

	t.Run("generated names differ between trackers", func(t *testing.T) {
		registry := &mockRegistry{}
		a, err := tracker.Start(ctx, registry, "a")
		if err != nil {
			t.Fatal(err)
		}
		b, err := tracker.Start(ctx, registry, "b")
		if err != nil {
			t.Fatal(err)
		}
		if a.Name() == b.Name() {
			t.Errorf("names collide: %s", a.Name())
		}
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	endedAt := time.Date(2024, 10, 30, 13, 0, 0, 0, time.UTC)

	start := func(t *testing.T, registry *mockRegistry) *tracker.Tracker {
		testee, err := tracker.Start(
			ctx, registry, "x",
			tracker.WithName("comp-fixed"), tracker.WithClock(fixedClock(endedAt)),
		)
		if err != nil {
			t.Fatal(err)
		}
		return testee
	}

	t.Run("Close(nil) finalizes as Completed", func(t *testing.T) {
		registry := &mockRegistry{}
		testee := start(t, registry)

		if err := testee.Close(ctx, nil); err != nil {
			t.Fatalf("Close returns error: %s", err)
		}

		if len(registry.finished) != 1 {
			t.Fatalf("FinishComponent is called %d times", len(registry.finished))
		}
		fin := registry.finished[0]
		if fin.Component != "comp-fixed" || fin.Status != domain.Completed || !fin.EndedAt.Equal(endedAt) {
			t.Errorf("unexpected finish: %+v", fin)
		}
	})

	t.Run("Close(err) finalizes as Failed", func(t *testing.T) {
		registry := &mockRegistry{}
		testee := start(t, registry)

		if err := testee.Close(ctx, errors.New("fake task error")); err != nil {
			t.Fatalf("Close returns error: %s", err)
		}

		if registry.finished[0].Status != domain.Failed {
			t.Errorf("status: %s", registry.finished[0].Status)
		}
	})

	t.Run("closing twice finalizes once", func(t *testing.T) {
		registry := &mockRegistry{}
		testee := start(t, registry)

		testee.Close(ctx, nil)
		testee.Close(ctx, nil)

		if len(registry.finished) != 1 {
			t.Errorf("FinishComponent is called %d times", len(registry.finished))
		}
	})
}

func TestTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("a successful task completes the component", func(t *testing.T) {
		registry := &mockRegistry{}

		err := tracker.Track(ctx, registry, "x", func(ctx context.Context, tr *tracker.Tracker) error {
			return tr.LogParameters(ctx, map[string]domain.ParamValue{
				"learning_rate": domain.NumberParam(0.01),
			})
		})
		if err != nil {
			t.Fatalf("Track returns error: %s", err)
		}

		if len(registry.finished) != 1 || registry.finished[0].Status != domain.Completed {
			t.Errorf("unexpected finish: %+v", registry.finished)
		}
		if len(registry.parameters) != 1 {
			t.Errorf("LogParameters is called %d times", len(registry.parameters))
		}
	})

	t.Run("a failing task fails the component and propagates the error", func(t *testing.T) {
		registry := &mockRegistry{}
		wantErr := errors.New("fake task error")

		err := tracker.Track(ctx, registry, "x", func(context.Context, *tracker.Tracker) error {
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("unexpected error: %s", err)
		}

		if len(registry.finished) != 1 || registry.finished[0].Status != domain.Failed {
			t.Errorf("unexpected finish: %+v", registry.finished)
		}
	})

	t.Run("a panicking task fails the component and rethrows", func(t *testing.T) {
		registry := &mockRegistry{}

		func() {
			defer func() {
				if recover() == nil {
					t.Error("panic is not rethrown")
				}
			}()
			tracker.Track(ctx, registry, "x", func(context.Context, *tracker.Tracker) error {
				panic("boom")
			})
		}()

		if len(registry.finished) != 1 || registry.finished[0].Status != domain.Failed {
			t.Errorf("unexpected finish: %+v", registry.finished)
		}
	})
}
