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

// a struct for DB operations related to Trial
type trialPG struct { // implements db.TrialInterface
	pool tpool.Pool
}

func New(pool tpool.Pool) *trialPG {
	return &trialPG{pool: pool}
}

func (t *trialPG) Create(ctx context.Context, trial domain.TrialBody) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(
		ctx,
		`insert into "trial" ("name", "experiment_name", "created_at") values ($1, $2, $3)`,
		trial.Name, trial.ExperimentName, trial.CreatedAt,
	); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			switch pgerr.Code {
			case pgerrcode.UniqueViolation:
				return dberr.Duplicated{Table: "trial", Identity: trial.Name}
			case pgerrcode.ForeignKeyViolation:
				return dberr.Missing{Table: "experiment", Identity: trial.ExperimentName}
			}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (t *trialPG) Get(ctx context.Context, names []string) (map[string]domain.Trial, error) {
	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`select "name", "experiment_name", "created_at" from "trial" where "name" = any($1)`,
		names,
	)
	if err != nil {
		return nil, err
	}

	result := map[string]domain.Trial{}
	found := []string{}
	for rows.Next() {
		var body domain.TrialBody
		if err := rows.Scan(&body.Name, &body.ExperimentName, &body.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		result[body.Name] = domain.Trial{TrialBody: body}
		found = append(found, body.Name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	components, err := attachedComponents(ctx, conn, found)
	if err != nil {
		return nil, err
	}
	for name, comps := range components {
		trial := result[name]
		trial.Components = comps
		result[name] = trial
	}

	return result, nil
}

func (t *trialPG) Find(ctx context.Context, experimentName string) ([]domain.Trial, error) {
	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select "name", "experiment_name", "created_at" from "trial"
		where ($1 = '' or "experiment_name" = $1)
		order by "created_at", "name"
		`,
		experimentName,
	)
	if err != nil {
		return nil, err
	}

	result := []domain.Trial{}
	names := []string{}
	for rows.Next() {
		var body domain.TrialBody
		if err := rows.Scan(&body.Name, &body.ExperimentName, &body.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, domain.Trial{TrialBody: body})
		names = append(names, body.Name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	components, err := attachedComponents(ctx, conn, names)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Components = components[result[i].Name]
	}

	return result, nil
}

// attachedComponents maps trial names to their component bodies,
// in attachment order.
func attachedComponents(
	ctx context.Context, conn tpool.Queryer, trialNames []string,
) (map[string][]domain.ComponentBody, error) {
	if len(trialNames) == 0 {
		return map[string][]domain.ComponentBody{}, nil
	}

	rows, err := conn.Query(
		ctx,
		`
		select
			"a"."trial_name",
			"c"."name", "c"."display_name", "c"."status", "c"."started_at", "c"."ended_at"
		from "trial_component_assoc" as "a"
			inner join "trial_component" as "c" on "a"."component_name" = "c"."name"
		where "a"."trial_name" = any($1)
		order by "a"."attached_at", "c"."name"
		`,
		trialNames,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string][]domain.ComponentBody{}
	for rows.Next() {
		var trialName string
		var body domain.ComponentBody
		var status string
		if err := rows.Scan(
			&trialName,
			&body.Name, &body.DisplayName, &status, &body.StartedAt, &body.EndedAt,
		); err != nil {
			return nil, err
		}
		body.Status, err = domain.AsComponentStatus(status)
		if err != nil {
			return nil, err
		}
		result[trialName] = append(result[trialName], body)
	}

	return result, rows.Err()
}
