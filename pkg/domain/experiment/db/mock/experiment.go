package mock

import (
	"context"
	"errors"

	"github.com/trellis-ml/trellis/pkg/domain"
	kdb "github.com/trellis-ml/trellis/pkg/domain/experiment/db"
	dbmock "github.com/trellis-ml/trellis/pkg/domain/internal/db/mock"
)

type ExperimentInterface struct {
	Impl struct {
		Create func(ctx context.Context, experiment domain.Experiment) error
		Get    func(ctx context.Context, names []string) (map[string]domain.Experiment, error)
		Find   func(ctx context.Context) ([]domain.Experiment, error)
	}

	Calls struct {
		Create dbmock.CallLog[domain.Experiment]
		Get    dbmock.CallLog[[]string]
		Find   dbmock.CallLog[struct{}]
	}
}

func NewExperimentInterface() *ExperimentInterface {
	return &ExperimentInterface{}
}

var _ kdb.ExperimentInterface = &ExperimentInterface{}

func (m *ExperimentInterface) Create(ctx context.Context, experiment domain.Experiment) error {
	m.Calls.Create = append(m.Calls.Create, experiment)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, experiment)
	}
	panic(errors.New("it should not be called"))
}

func (m *ExperimentInterface) Get(ctx context.Context, names []string) (map[string]domain.Experiment, error) {
	m.Calls.Get = append(m.Calls.Get, names)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, names)
	}
	panic(errors.New("it should not be called"))
}

func (m *ExperimentInterface) Find(ctx context.Context) ([]domain.Experiment, error) {
	m.Calls.Find = append(m.Calls.Find, struct{}{})
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx)
	}
	panic(errors.New("it should not be called"))
}
