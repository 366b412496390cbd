package query

import (
	"context"
	"encoding/json"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
	tflag "github.com/trellis-ml/trellis/pkg/commandline/flag"
)

type Flags struct {
	Experiment  string         `flag:"experiment" alias:"e" help:"restrict the table to one Experiment. Defaults to the trellisenv experiment."`
	Trial       string         `flag:"trial" help:"restrict the table to Components attached to one Trial."`
	Component   string         `flag:"component" help:"restrict the table to the Component with this name."`
	DisplayName string         `flag:"display-name" help:"restrict the table to Components with this display name."`
	Status      string         `flag:"status" help:"restrict the table to Components in this status: created, completed or failed."`
	Metric      tflag.Argslice `flag:"metric" alias:"m" metavar:"METRIC..." help:"metric to summarize. Repeatable."`
	Param       tflag.Argslice `flag:"param" alias:"p" metavar:"PARAM..." help:"parameter column to include. Repeatable."`
	SortBy      string         `flag:"sort-by" help:"column to sort rows by: a parameter name or \"METRIC - STAT\" like \"val:loss - Min\""`
	Desc        bool           `flag:"desc" help:"sort in descending order"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Build a comparison table over Trial Components.",
		Flags{
			Metric: tflag.Argslice{},
			Param:  tflag.Argslice{},
		},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Build a comparison table over Trial Components.

Each requested metric is summarized per Component as Min, Max, Avg,
StdDev, Last and Count over its observations. Components that never
observed a metric get an all-zero summary; parameters a Component never
logged are shown as null.

Comparing runs of the experiment "mnist" by best validation accuracy:

	{{ .Command }} -e mnist -m val:accuracy -p lr -p optimizer --sort-by "val:accuracy - Max" --desc
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		trellisEnv env.TrellisEnv,
		client trest.TrellisClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()

		experiment := flags.Experiment
		if experiment == "" {
			experiment = trellisEnv.Experiment
		}

		order := ""
		if flags.Desc {
			order = "descending"
		}

		table, err := client.Query(ctx, apianalytics.Query{
			Experiment:  experiment,
			Trial:       flags.Trial,
			Component:   flags.Component,
			DisplayName: flags.DisplayName,
			Status:      flags.Status,
			Metrics:     flags.Metric,
			Parameters:  flags.Param,
			SortBy:      flags.SortBy,
			Order:       order,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(table); err != nil {
			logger.Panicf("fail to dump analytics table")
		}
		return nil
	}
}
