package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	tpool "github.com/trellis-ml/trellis/pkg/conn/db/postgres/pool"
	kcomponent "github.com/trellis-ml/trellis/pkg/domain/component/db"
	kpgcomponent "github.com/trellis-ml/trellis/pkg/domain/component/db/postgres"
	kexperiment "github.com/trellis-ml/trellis/pkg/domain/experiment/db"
	kpgexperiment "github.com/trellis-ml/trellis/pkg/domain/experiment/db/postgres"
	kschema "github.com/trellis-ml/trellis/pkg/domain/schema/db"
	kpgschema "github.com/trellis-ml/trellis/pkg/domain/schema/db/postgres"
	dbInterface "github.com/trellis-ml/trellis/pkg/domain/trellis/db"
	ktrial "github.com/trellis-ml/trellis/pkg/domain/trial/db"
	kpgtrial "github.com/trellis-ml/trellis/pkg/domain/trial/db/postgres"
)

type trellisDBPostgres struct {
	pool       *pgxpool.Pool
	experiment kexperiment.ExperimentInterface
	trial      ktrial.TrialInterface
	component  kcomponent.ComponentInterface
	schema     kschema.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.TrellisDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, err
	}

	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	p := tpool.Wrap(pool)
	var schema kschema.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &trellisDBPostgres{
		pool:       pool,
		experiment: kpgexperiment.New(p),
		trial:      kpgtrial.New(p),
		component:  kpgcomponent.New(p),
		schema:     schema,
	}, nil
}

func (t *trellisDBPostgres) Experiment() kexperiment.ExperimentInterface {
	return t.experiment
}

func (t *trellisDBPostgres) Trial() ktrial.TrialInterface {
	return t.trial
}

func (t *trellisDBPostgres) Component() kcomponent.ComponentInterface {
	return t.component
}

func (t *trellisDBPostgres) Schema() kschema.SchemaInterface {
	return t.schema
}

func (t *trellisDBPostgres) Close() error {
	t.pool.Close()
	return nil
}
