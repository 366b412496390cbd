package mock

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ml/trellis/cmd/trellis/rest"
	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	apistorage "github.com/trellis-ml/trellis/pkg/api/types/storage"
	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
)

type LogParametersArgs struct {
	ComponentName string
	Parameters    map[string]apicomponents.ParamValue
}

type LogArtifactArgs struct {
	ComponentName string
	Artifact      apicomponents.Artifact
}

type AppendObservationsArgs struct {
	ComponentName string
	Metric        string
	Observations  []apicomponents.Observation
}

type AttachComponentArgs struct {
	TrialName     string
	ComponentName string
}

type FinishComponentArgs struct {
	ComponentName string
	Status        string
	EndedAt       time.Time
}

type DeleteEndpointArgs struct {
	Name         string
	DeleteConfig bool
}

func New(t *testing.T) *mockTrellisClient {
	return &mockTrellisClient{t: t}
}

type mockTrellisClient struct {
	t    *testing.T
	Impl struct {
		RegisterExperiment func(ctx context.Context, spec apiexperiments.Spec) (apiexperiments.Detail, error)
		GetExperiment      func(ctx context.Context, name string) (apiexperiments.Detail, error)
		FindExperiment     func(ctx context.Context) ([]apiexperiments.Detail, error)

		RegisterTrial func(ctx context.Context, spec apitrials.Spec) (apitrials.Detail, error)
		GetTrial      func(ctx context.Context, name string) (apitrials.Detail, error)
		FindTrial     func(ctx context.Context, experiment string) ([]apitrials.Detail, error)

		RegisterComponent  func(ctx context.Context, spec apicomponents.Spec) (apicomponents.Detail, error)
		GetComponent       func(ctx context.Context, name string) (apicomponents.Detail, error)
		FindComponent      func(ctx context.Context, query rest.FindComponentParameter) ([]apicomponents.Detail, error)
		LogParameters      func(ctx context.Context, componentName string, parameters map[string]apicomponents.ParamValue) error
		LogInput           func(ctx context.Context, componentName string, artifact apicomponents.Artifact) error
		LogOutput          func(ctx context.Context, componentName string, artifact apicomponents.Artifact) error
		AppendObservations func(ctx context.Context, componentName string, metric string, observations []apicomponents.Observation) error
		AttachComponent    func(ctx context.Context, trialName string, componentName string) error
		FinishComponent    func(ctx context.Context, componentName string, status string, endedAt time.Time) (apicomponents.Detail, error)

		Query func(ctx context.Context, query apianalytics.Query) (apianalytics.Table, error)

		SubmitJob func(ctx context.Context, spec apijobs.Spec) (apijobs.Handle, error)
		SweepJobs func(ctx context.Context, specs []apijobs.Spec) ([]apijobs.SweepResult, error)

		DeployEndpoint func(ctx context.Context, spec apiendpoints.Spec) (apiendpoints.Handle, error)
		DeleteEndpoint func(ctx context.Context, name string, deleteConfig bool) error

		StorageInfo func(ctx context.Context) (apistorage.Info, error)
	}
	Calls struct {
		RegisterExperiment []apiexperiments.Spec
		GetExperiment      []string
		FindExperiment     int

		RegisterTrial []apitrials.Spec
		GetTrial      []string
		FindTrial     []string

		RegisterComponent  []apicomponents.Spec
		GetComponent       []string
		FindComponent      []rest.FindComponentParameter
		LogParameters      []LogParametersArgs
		LogInput           []LogArtifactArgs
		LogOutput          []LogArtifactArgs
		AppendObservations []AppendObservationsArgs
		AttachComponent    []AttachComponentArgs
		FinishComponent    []FinishComponentArgs

		Query []apianalytics.Query

		SubmitJob []apijobs.Spec
		SweepJobs [][]apijobs.Spec

		DeployEndpoint []apiendpoints.Spec
		DeleteEndpoint []DeleteEndpointArgs

		StorageInfo int
	}
}

var _ rest.TrellisClient = &mockTrellisClient{}

func (m *mockTrellisClient) RegisterExperiment(
	ctx context.Context, spec apiexperiments.Spec,
) (apiexperiments.Detail, error) {
	m.t.Helper()
	m.Calls.RegisterExperiment = append(m.Calls.RegisterExperiment, spec)
	if m.Impl.RegisterExperiment == nil {
		m.t.Fatal("RegisterExperiment is not ready to be called")
	}
	return m.Impl.RegisterExperiment(ctx, spec)
}

func (m *mockTrellisClient) GetExperiment(
	ctx context.Context, name string,
) (apiexperiments.Detail, error) {
	m.t.Helper()
	m.Calls.GetExperiment = append(m.Calls.GetExperiment, name)
	if m.Impl.GetExperiment == nil {
		m.t.Fatal("GetExperiment is not ready to be called")
	}
	return m.Impl.GetExperiment(ctx, name)
}

func (m *mockTrellisClient) FindExperiment(ctx context.Context) ([]apiexperiments.Detail, error) {
	m.t.Helper()
	m.Calls.FindExperiment += 1
	if m.Impl.FindExperiment == nil {
		m.t.Fatal("FindExperiment is not ready to be called")
	}
	return m.Impl.FindExperiment(ctx)
}

func (m *mockTrellisClient) RegisterTrial(
	ctx context.Context, spec apitrials.Spec,
) (apitrials.Detail, error) {
	m.t.Helper()
	m.Calls.RegisterTrial = append(m.Calls.RegisterTrial, spec)
	if m.Impl.RegisterTrial == nil {
		m.t.Fatal("RegisterTrial is not ready to be called")
	}
	return m.Impl.RegisterTrial(ctx, spec)
}

func (m *mockTrellisClient) GetTrial(ctx context.Context, name string) (apitrials.Detail, error) {
	m.t.Helper()
	m.Calls.GetTrial = append(m.Calls.GetTrial, name)
	if m.Impl.GetTrial == nil {
		m.t.Fatal("GetTrial is not ready to be called")
	}
	return m.Impl.GetTrial(ctx, name)
}

func (m *mockTrellisClient) FindTrial(
	ctx context.Context, experiment string,
) ([]apitrials.Detail, error) {
	m.t.Helper()
	m.Calls.FindTrial = append(m.Calls.FindTrial, experiment)
	if m.Impl.FindTrial == nil {
		m.t.Fatal("FindTrial is not ready to be called")
	}
	return m.Impl.FindTrial(ctx, experiment)
}

func (m *mockTrellisClient) RegisterComponent(
	ctx context.Context, spec apicomponents.Spec,
) (apicomponents.Detail, error) {
	m.t.Helper()
	m.Calls.RegisterComponent = append(m.Calls.RegisterComponent, spec)
	if m.Impl.RegisterComponent == nil {
		m.t.Fatal("RegisterComponent is not ready to be called")
	}
	return m.Impl.RegisterComponent(ctx, spec)
}

func (m *mockTrellisClient) GetComponent(
	ctx context.Context, name string,
) (apicomponents.Detail, error) {
	m.t.Helper()
	m.Calls.GetComponent = append(m.Calls.GetComponent, name)
	if m.Impl.GetComponent == nil {
		m.t.Fatal("GetComponent is not ready to be called")
	}
	return m.Impl.GetComponent(ctx, name)
}

func (m *mockTrellisClient) FindComponent(
	ctx context.Context, query rest.FindComponentParameter,
) ([]apicomponents.Detail, error) {
	m.t.Helper()
	m.Calls.FindComponent = append(m.Calls.FindComponent, query)
	if m.Impl.FindComponent == nil {
		m.t.Fatal("FindComponent is not ready to be called")
	}
	return m.Impl.FindComponent(ctx, query)
}

func (m *mockTrellisClient) LogParameters(
	ctx context.Context, componentName string, parameters map[string]apicomponents.ParamValue,
) error {
	m.t.Helper()
	m.Calls.LogParameters = append(m.Calls.LogParameters, LogParametersArgs{
		ComponentName: componentName, Parameters: parameters,
	})
	if m.Impl.LogParameters == nil {
		m.t.Fatal("LogParameters is not ready to be called")
	}
	return m.Impl.LogParameters(ctx, componentName, parameters)
}

func (m *mockTrellisClient) LogInput(
	ctx context.Context, componentName string, artifact apicomponents.Artifact,
) error {
	m.t.Helper()
	m.Calls.LogInput = append(m.Calls.LogInput, LogArtifactArgs{
		ComponentName: componentName, Artifact: artifact,
	})
	if m.Impl.LogInput == nil {
		m.t.Fatal("LogInput is not ready to be called")
	}
	return m.Impl.LogInput(ctx, componentName, artifact)
}

func (m *mockTrellisClient) LogOutput(
	ctx context.Context, componentName string, artifact apicomponents.Artifact,
) error {
	m.t.Helper()
	m.Calls.LogOutput = append(m.Calls.LogOutput, LogArtifactArgs{
		ComponentName: componentName, Artifact: artifact,
	})
	if m.Impl.LogOutput == nil {
		m.t.Fatal("LogOutput is not ready to be called")
	}
	return m.Impl.LogOutput(ctx, componentName, artifact)
}

func (m *mockTrellisClient) AppendObservations(
	ctx context.Context, componentName string, metric string, observations []apicomponents.Observation,
) error {
	m.t.Helper()
	m.Calls.AppendObservations = append(m.Calls.AppendObservations, AppendObservationsArgs{
		ComponentName: componentName, Metric: metric, Observations: observations,
	})
	if m.Impl.AppendObservations == nil {
		m.t.Fatal("AppendObservations is not ready to be called")
	}
	return m.Impl.AppendObservations(ctx, componentName, metric, observations)
}

func (m *mockTrellisClient) AttachComponent(
	ctx context.Context, trialName string, componentName string,
) error {
	m.t.Helper()
	m.Calls.AttachComponent = append(m.Calls.AttachComponent, AttachComponentArgs{
		TrialName: trialName, ComponentName: componentName,
	})
	if m.Impl.AttachComponent == nil {
		m.t.Fatal("AttachComponent is not ready to be called")
	}
	return m.Impl.AttachComponent(ctx, trialName, componentName)
}

func (m *mockTrellisClient) FinishComponent(
	ctx context.Context, componentName string, status string, endedAt time.Time,
) (apicomponents.Detail, error) {
	m.t.Helper()
	m.Calls.FinishComponent = append(m.Calls.FinishComponent, FinishComponentArgs{
		ComponentName: componentName, Status: status, EndedAt: endedAt,
	})
	if m.Impl.FinishComponent == nil {
		m.t.Fatal("FinishComponent is not ready to be called")
	}
	return m.Impl.FinishComponent(ctx, componentName, status, endedAt)
}

func (m *mockTrellisClient) Query(
	ctx context.Context, query apianalytics.Query,
) (apianalytics.Table, error) {
	m.t.Helper()
	m.Calls.Query = append(m.Calls.Query, query)
	if m.Impl.Query == nil {
		m.t.Fatal("Query is not ready to be called")
	}
	return m.Impl.Query(ctx, query)
}

func (m *mockTrellisClient) SubmitJob(
	ctx context.Context, spec apijobs.Spec,
) (apijobs.Handle, error) {
	m.t.Helper()
	m.Calls.SubmitJob = append(m.Calls.SubmitJob, spec)
	if m.Impl.SubmitJob == nil {
		m.t.Fatal("SubmitJob is not ready to be called")
	}
	return m.Impl.SubmitJob(ctx, spec)
}

func (m *mockTrellisClient) SweepJobs(
	ctx context.Context, specs []apijobs.Spec,
) ([]apijobs.SweepResult, error) {
	m.t.Helper()
	m.Calls.SweepJobs = append(m.Calls.SweepJobs, specs)
	if m.Impl.SweepJobs == nil {
		m.t.Fatal("SweepJobs is not ready to be called")
	}
	return m.Impl.SweepJobs(ctx, specs)
}

func (m *mockTrellisClient) DeployEndpoint(
	ctx context.Context, spec apiendpoints.Spec,
) (apiendpoints.Handle, error) {
	m.t.Helper()
	m.Calls.DeployEndpoint = append(m.Calls.DeployEndpoint, spec)
	if m.Impl.DeployEndpoint == nil {
		m.t.Fatal("DeployEndpoint is not ready to be called")
	}
	return m.Impl.DeployEndpoint(ctx, spec)
}

func (m *mockTrellisClient) DeleteEndpoint(
	ctx context.Context, name string, deleteConfig bool,
) error {
	m.t.Helper()
	m.Calls.DeleteEndpoint = append(m.Calls.DeleteEndpoint, DeleteEndpointArgs{
		Name: name, DeleteConfig: deleteConfig,
	})
	if m.Impl.DeleteEndpoint == nil {
		m.t.Fatal("DeleteEndpoint is not ready to be called")
	}
	return m.Impl.DeleteEndpoint(ctx, name, deleteConfig)
}

func (m *mockTrellisClient) StorageInfo(ctx context.Context) (apistorage.Info, error) {
	m.t.Helper()
	m.Calls.StorageInfo += 1
	if m.Impl.StorageInfo == nil {
		m.t.Fatal("StorageInfo is not ready to be called")
	}
	return m.Impl.StorageInfo(ctx)
}
