package mock

import (
	"context"
	"errors"

	"github.com/trellis-ml/trellis/pkg/domain"
	dbmock "github.com/trellis-ml/trellis/pkg/domain/internal/db/mock"
	kdb "github.com/trellis-ml/trellis/pkg/domain/trial/db"
)

type TrialInterface struct {
	Impl struct {
		Create func(ctx context.Context, trial domain.TrialBody) error
		Get    func(ctx context.Context, names []string) (map[string]domain.Trial, error)
		Find   func(ctx context.Context, experimentName string) ([]domain.Trial, error)
	}

	Calls struct {
		Create dbmock.CallLog[domain.TrialBody]
		Get    dbmock.CallLog[[]string]
		Find   dbmock.CallLog[string]
	}
}

func NewTrialInterface() *TrialInterface {
	return &TrialInterface{}
}

var _ kdb.TrialInterface = &TrialInterface{}

func (m *TrialInterface) Create(ctx context.Context, trial domain.TrialBody) error {
	m.Calls.Create = append(m.Calls.Create, trial)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, trial)
	}
	panic(errors.New("it should not be called"))
}

func (m *TrialInterface) Get(ctx context.Context, names []string) (map[string]domain.Trial, error) {
	m.Calls.Get = append(m.Calls.Get, names)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, names)
	}
	panic(errors.New("it should not be called"))
}

func (m *TrialInterface) Find(ctx context.Context, experimentName string) ([]domain.Trial, error) {
	m.Calls.Find = append(m.Calls.Find, experimentName)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, experimentName)
	}
	panic(errors.New("it should not be called"))
}
