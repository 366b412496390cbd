package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	tpool "github.com/trellis-ml/trellis/pkg/conn/db/postgres/pool"
	"github.com/trellis-ml/trellis/pkg/domain"
	dberr "github.com/trellis-ml/trellis/pkg/domain/errors/dberrors/postgres"
)

// a struct for DB operations related to Experiment
type experimentPG struct { // implements db.ExperimentInterface
	pool tpool.Pool
}

func New(pool tpool.Pool) *experimentPG {
	return &experimentPG{pool: pool}
}

func (e *experimentPG) Create(ctx context.Context, experiment domain.Experiment) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(
		ctx,
		`insert into "experiment" ("name", "description", "created_at") values ($1, $2, $3)`,
		experiment.Name, experiment.Description, experiment.CreatedAt,
	); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) &&
			pgerr.Code == pgerrcode.UniqueViolation {
			return dberr.Duplicated{Table: "experiment", Identity: experiment.Name}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (e *experimentPG) Get(ctx context.Context, names []string) (map[string]domain.Experiment, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`select "name", "description", "created_at" from "experiment" where "name" = any($1)`,
		names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]domain.Experiment{}
	for rows.Next() {
		var exp domain.Experiment
		if err := rows.Scan(&exp.Name, &exp.Description, &exp.CreatedAt); err != nil {
			return nil, err
		}
		result[exp.Name] = exp
	}

	return result, rows.Err()
}

func (e *experimentPG) Find(ctx context.Context) ([]domain.Experiment, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`select "name", "description", "created_at" from "experiment" order by "created_at", "name"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Experiment{}
	for rows.Next() {
		var exp domain.Experiment
		if err := rows.Scan(&exp.Name, &exp.Description, &exp.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, exp)
	}

	return result, rows.Err()
}
