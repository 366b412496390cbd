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
	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
)

type Flags struct {
	Experiment string `flag:"experiment" alias:"e" help:"Experiment the Trial belongs to. Defaults to the trellisenv experiment."`
}

const ARG_TRIAL_NAME = "TRIAL_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Create a new Trial under an Experiment.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_TRIAL_NAME, Required: true,
				Help: "name of the Trial to be created",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Create a new Trial under an Experiment.

When --experiment is omitted, the "experiment" entry of the trellisenv
file is used.
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
		name := cl.Args()[ARG_TRIAL_NAME][0]

		experiment := cl.Flags().Experiment
		if experiment == "" {
			experiment = trellisEnv.Experiment
		}
		if experiment == "" {
			return fmt.Errorf(
				"%w: no experiment is given. pass --experiment or set one in trellisenv",
				flarc.ErrUsage,
			)
		}

		detail, err := client.RegisterTrial(ctx, apitrials.Spec{
			Name:       name,
			Experiment: experiment,
		})
		if err != nil {
			return fmt.Errorf("%w: trial:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump created Trial")
		}
		return nil
	}
}
