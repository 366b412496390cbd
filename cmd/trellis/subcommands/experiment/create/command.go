package create

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
)

type Flags struct {
	Description string `flag:"description" alias:"d" help:"description of the experiment"`
}

const ARG_EXPERIMENT_NAME = "EXPERIMENT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Create a new Experiment.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_EXPERIMENT_NAME, Required: true,
				Help: "name of the Experiment to be created",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Create a new Experiment.

An Experiment groups Trials of one line of work. Its name is unique
across the server, and the creation of an already taken name is
rejected without touching the existing Experiment.
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
		name := cl.Args()[ARG_EXPERIMENT_NAME][0]

		detail, err := client.RegisterExperiment(ctx, apiexperiments.Spec{
			Name:        name,
			Description: cl.Flags().Description,
		})
		if err != nil {
			return fmt.Errorf("%w: experiment:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump created Experiment")
		}
		return nil
	}
}
