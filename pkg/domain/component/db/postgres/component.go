package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	tpool "github.com/trellis-ml/trellis/pkg/conn/db/postgres/pool"
	"github.com/trellis-ml/trellis/pkg/domain"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	dberr "github.com/trellis-ml/trellis/pkg/domain/errors/dberrors/postgres"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

// a struct for DB operations related to Trial Component
type componentPG struct { // implements db.ComponentInterface
	pool tpool.Pool
}

func New(pool tpool.Pool) *componentPG {
	return &componentPG{pool: pool}
}

func (c *componentPG) Create(ctx context.Context, component domain.ComponentBody) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(
		ctx,
		`
		insert into "trial_component"
			("name", "display_name", "status", "started_at", "ended_at")
			values ($1, $2, $3, $4, $5)
		`,
		component.Name, component.DisplayName,
		component.Status.String(), component.StartedAt, component.EndedAt,
	); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) &&
			pgerr.Code == pgerrcode.UniqueViolation {
			return dberr.Duplicated{Table: "trial_component", Identity: component.Name}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (c *componentPG) Attach(ctx context.Context, trialName string, componentName string) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// "on conflict do nothing" makes reattaching idempotent.
	if _, err := tx.Exec(
		ctx,
		`
		insert into "trial_component_assoc" ("trial_name", "component_name")
			values ($1, $2)
			on conflict ("trial_name", "component_name") do nothing
		`,
		trialName, componentName,
	); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) &&
			pgerr.Code == pgerrcode.ForeignKeyViolation {
			if pgerr.ConstraintName == "trial_component_assoc_trial_fk" {
				return dberr.Missing{Table: "trial", Identity: trialName}
			}
			return dberr.Missing{Table: "trial_component", Identity: componentName}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (c *componentPG) LogParameters(
	ctx context.Context, componentName string, parameters map[string]domain.ParamValue,
) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockComponent(ctx, tx, componentName); err != nil {
		return err
	}

	for name, value := range parameters {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "parameter" ("component_name", "name", "number", "string")
				values ($1, $2, $3, $4)
				on conflict ("component_name", "name") do update
					set "number" = excluded."number", "string" = excluded."string"
			`,
			componentName, name, value.Number, value.String,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (c *componentPG) LogInput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	return c.logArtifact(ctx, componentName, "input", artifact)
}

func (c *componentPG) LogOutput(ctx context.Context, componentName string, artifact domain.Artifact) error {
	return c.logArtifact(ctx, componentName, "output", artifact)
}

func (c *componentPG) logArtifact(
	ctx context.Context, componentName string, kind string, artifact domain.Artifact,
) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockComponent(ctx, tx, componentName); err != nil {
		return err
	}

	if _, err := tx.Exec(
		ctx,
		`
		insert into "artifact" ("component_name", "kind", "name", "uri", "media_type")
			values ($1, $2, $3, $4, $5)
			on conflict ("component_name", "kind", "name") do update
				set "uri" = excluded."uri", "media_type" = excluded."media_type"
		`,
		componentName, kind, artifact.Name, artifact.URI, artifact.MediaType,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (c *componentPG) AppendObservations(
	ctx context.Context, componentName string, metric string, observations []domain.Observation,
) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockComponent(ctx, tx, componentName); err != nil {
		return err
	}

	timestamps := new(pgtype.TimestamptzArray)
	if err := timestamps.Set(slices.Map(
		observations, func(o domain.Observation) time.Time { return o.Timestamp },
	)); err != nil {
		return err
	}
	values := new(pgtype.Float8Array)
	if err := values.Set(slices.Map(
		observations, func(o domain.Observation) float64 { return o.Value },
	)); err != nil {
		return err
	}

	// unnest keeps array order, so "id" follows the given order.
	if _, err := tx.Exec(
		ctx,
		`
		insert into "observation" ("component_name", "metric", "timestamp", "value")
			select $1, $2, "t", "v"
			from unnest($3::timestamptz[], $4::float8[]) as "obs" ("t", "v")
		`,
		componentName, metric, timestamps, values,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (c *componentPG) Finish(
	ctx context.Context, componentName string, status domain.ComponentStatus, endedAt time.Time,
) error {
	if !status.Terminal() {
		return domerr.ErrInvalidStatusTransition
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(
		ctx,
		`select "status" from "trial_component" where "name" = $1 for update`,
		componentName,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.Missing{Table: "trial_component", Identity: componentName}
		}
		return err
	}

	currentStatus, err := domain.AsComponentStatus(current)
	if err != nil {
		return err
	}
	if currentStatus.Terminal() {
		return domerr.ErrInvalidStatusTransition
	}

	if _, err := tx.Exec(
		ctx,
		`update "trial_component" set "status" = $1, "ended_at" = $2 where "name" = $3`,
		status.String(), endedAt, componentName,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (c *componentPG) Get(ctx context.Context, names []string) (map[string]domain.TrialComponent, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	bodies, err := bodiesByName(ctx, conn, names)
	if err != nil {
		return nil, err
	}

	return hydrate(ctx, conn, bodies)
}

func (c *componentPG) Find(ctx context.Context, query domain.ComponentFindQuery) ([]domain.TrialComponent, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select distinct
			"c"."name", "c"."display_name", "c"."status", "c"."started_at", "c"."ended_at"
		from "trial_component" as "c"
			left join "trial_component_assoc" as "a" on "a"."component_name" = "c"."name"
			left join "trial" as "t" on "t"."name" = "a"."trial_name"
		where ($1 = '' or "t"."experiment_name" = $1)
			and ($2 = '' or "a"."trial_name" = $2)
			and ($3 = '' or "c"."name" = $3)
			and ($4 = '' or "c"."display_name" = $4)
			and ($5 = '' or "c"."status" = $5)
		order by "c"."started_at", "c"."name"
		`,
		query.ExperimentName, query.TrialName,
		query.Name, query.DisplayName, query.Status.String(),
	)
	if err != nil {
		return nil, err
	}

	order := []string{}
	bodies := map[string]domain.ComponentBody{}
	for rows.Next() {
		body, err := scanBody(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		order = append(order, body.Name)
		bodies[body.Name] = body
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	components, err := hydrate(ctx, conn, bodies)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TrialComponent, 0, len(order))
	for _, name := range order {
		result = append(result, components[name])
	}
	return result, nil
}

// lockComponent takes a row lock on the component, or reports Missing.
func lockComponent(ctx context.Context, tx tpool.Tx, componentName string) error {
	var name string
	if err := tx.QueryRow(
		ctx,
		`select "name" from "trial_component" where "name" = $1 for update`,
		componentName,
	).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.Missing{Table: "trial_component", Identity: componentName}
		}
		return err
	}
	return nil
}

func scanBody(rows pgx.Rows) (domain.ComponentBody, error) {
	var body domain.ComponentBody
	var status string
	if err := rows.Scan(
		&body.Name, &body.DisplayName, &status, &body.StartedAt, &body.EndedAt,
	); err != nil {
		return domain.ComponentBody{}, err
	}
	var err error
	body.Status, err = domain.AsComponentStatus(status)
	if err != nil {
		return domain.ComponentBody{}, err
	}
	return body, nil
}

func bodiesByName(
	ctx context.Context, conn tpool.Queryer, names []string,
) (map[string]domain.ComponentBody, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "name", "display_name", "status", "started_at", "ended_at"
		from "trial_component" where "name" = any($1)
		`,
		names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]domain.ComponentBody{}
	for rows.Next() {
		body, err := scanBody(rows)
		if err != nil {
			return nil, err
		}
		result[body.Name] = body
	}
	return result, rows.Err()
}

// hydrate loads parameters, artifacts and metric series of the bodies.
func hydrate(
	ctx context.Context, conn tpool.Queryer, bodies map[string]domain.ComponentBody,
) (map[string]domain.TrialComponent, error) {
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}

	result := map[string]domain.TrialComponent{}
	for name, body := range bodies {
		result[name] = domain.TrialComponent{
			ComponentBody: body,
			Parameters:    map[string]domain.ParamValue{},
			Inputs:        []domain.Artifact{},
			Outputs:       []domain.Artifact{},
			Metrics:       map[string][]domain.Observation{},
		}
	}
	if len(names) == 0 {
		return result, nil
	}

	{
		rows, err := conn.Query(
			ctx,
			`
			select "component_name", "name", "number", "string"
			from "parameter" where "component_name" = any($1)
			`,
			names,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var componentName, paramName string
			var value domain.ParamValue
			if err := rows.Scan(&componentName, &paramName, &value.Number, &value.String); err != nil {
				rows.Close()
				return nil, err
			}
			result[componentName].Parameters[paramName] = value
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	{
		rows, err := conn.Query(
			ctx,
			`
			select "component_name", "kind", "name", "uri", "media_type"
			from "artifact" where "component_name" = any($1)
			order by "name"
			`,
			names,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var componentName, kind string
			var artifact domain.Artifact
			if err := rows.Scan(
				&componentName, &kind, &artifact.Name, &artifact.URI, &artifact.MediaType,
			); err != nil {
				rows.Close()
				return nil, err
			}
			component := result[componentName]
			switch kind {
			case "input":
				component.Inputs = append(component.Inputs, artifact)
			case "output":
				component.Outputs = append(component.Outputs, artifact)
			}
			result[componentName] = component
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	{
		rows, err := conn.Query(
			ctx,
			`
			select "component_name", "metric", "timestamp", "value"
			from "observation" where "component_name" = any($1)
			order by "id"
			`,
			names,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var componentName, metric string
			var obs domain.Observation
			if err := rows.Scan(&componentName, &metric, &obs.Timestamp, &obs.Value); err != nil {
				rows.Close()
				return nil, err
			}
			result[componentName].Metrics[metric] = append(result[componentName].Metrics[metric], obs)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return result, nil
}
