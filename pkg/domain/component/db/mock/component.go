package mock

import (
	"context"
	"errors"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
	kdb "github.com/trellis-ml/trellis/pkg/domain/component/db"
	dbmock "github.com/trellis-ml/trellis/pkg/domain/internal/db/mock"
)

type ComponentInterface struct {
	Impl struct {
		Create             func(ctx context.Context, component domain.ComponentBody) error
		Get                func(ctx context.Context, names []string) (map[string]domain.TrialComponent, error)
		Find               func(ctx context.Context, query domain.ComponentFindQuery) ([]domain.TrialComponent, error)
		Attach             func(ctx context.Context, trialName string, componentName string) error
		LogParameters      func(ctx context.Context, componentName string, parameters map[string]domain.ParamValue) error
		LogInput           func(ctx context.Context, componentName string, artifact domain.Artifact) error
		LogOutput          func(ctx context.Context, componentName string, artifact domain.Artifact) error
		AppendObservations func(ctx context.Context, componentName string, metric string, observations []domain.Observation) error
		Finish             func(ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time) error
	}

	Calls struct {
		Create dbmock.CallLog[domain.ComponentBody]
		Get    dbmock.CallLog[[]string]
		Find   dbmock.CallLog[domain.ComponentFindQuery]
		Attach dbmock.CallLog[struct {
			TrialName     string
			ComponentName string
		}]
		LogParameters dbmock.CallLog[struct {
			ComponentName string
			Parameters    map[string]domain.ParamValue
		}]
		LogInput dbmock.CallLog[struct {
			ComponentName string
			Artifact      domain.Artifact
		}]
		LogOutput dbmock.CallLog[struct {
			ComponentName string
			Artifact      domain.Artifact
		}]
		AppendObservations dbmock.CallLog[struct {
			ComponentName string
			Metric        string
			Observations  []domain.Observation
		}]
		Finish dbmock.CallLog[struct {
			ComponentName string
			Status        domain.ComponentStatus
			EndedAt       time.Time
		}]
	}
}

func NewComponentInterface() *ComponentInterface {
	return &ComponentInterface{}
}

var _ kdb.ComponentInterface = &ComponentInterface{}

func (m *ComponentInterface) Create(ctx context.Context, component domain.ComponentBody) error {
	m.Calls.Create = append(m.Calls.Create, component)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, component)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) Get(ctx context.Context, names []string) (map[string]domain.TrialComponent, error) {
	m.Calls.Get = append(m.Calls.Get, names)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, names)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) Find(ctx context.Context, query domain.ComponentFindQuery) ([]domain.TrialComponent, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) Attach(ctx context.Context, trialName string, componentName string) error {
	m.Calls.Attach = append(m.Calls.Attach, struct {
		TrialName     string
		ComponentName string
	}{TrialName: trialName, ComponentName: componentName})
	if m.Impl.Attach != nil {
		return m.Impl.Attach(ctx, trialName, componentName)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) LogParameters(
	ctx context.Context, componentName string, parameters map[string]domain.ParamValue,
) error {
	m.Calls.LogParameters = append(m.Calls.LogParameters, struct {
		ComponentName string
		Parameters    map[string]domain.ParamValue
	}{ComponentName: componentName, Parameters: parameters})
	if m.Impl.LogParameters != nil {
		return m.Impl.LogParameters(ctx, componentName, parameters)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) LogInput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	m.Calls.LogInput = append(m.Calls.LogInput, struct {
		ComponentName string
		Artifact      domain.Artifact
	}{ComponentName: componentName, Artifact: artifact})
	if m.Impl.LogInput != nil {
		return m.Impl.LogInput(ctx, componentName, artifact)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) LogOutput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	m.Calls.LogOutput = append(m.Calls.LogOutput, struct {
		ComponentName string
		Artifact      domain.Artifact
	}{ComponentName: componentName, Artifact: artifact})
	if m.Impl.LogOutput != nil {
		return m.Impl.LogOutput(ctx, componentName, artifact)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) AppendObservations(
	ctx context.Context, componentName string, metric string, observations []domain.Observation,
) error {
	m.Calls.AppendObservations = append(m.Calls.AppendObservations, struct {
		ComponentName string
		Metric        string
		Observations  []domain.Observation
	}{ComponentName: componentName, Metric: metric, Observations: observations})
	if m.Impl.AppendObservations != nil {
		return m.Impl.AppendObservations(ctx, componentName, metric, observations)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComponentInterface) Finish(
	ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time,
) error {
	m.Calls.Finish = append(m.Calls.Finish, struct {
		ComponentName string
		Status        domain.ComponentStatus
		EndedAt       time.Time
	}{ComponentName: componentName, Status: status, EndedAt: endedAt})
	if m.Impl.Finish != nil {
		return m.Impl.Finish(ctx, componentName, status, endedAt)
	}
	panic(errors.New("it should not be called"))
}
