package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
)

const ARG_EXPERIMENT_NAME = "EXPERIMENT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Return the Experiment information for the specified name.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_EXPERIMENT_NAME, Required: true,
				Help: "name of the Experiment to be shown",
			},
		},
		common.NewTask(Task()),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		trellisEnv env.TrellisEnv,
		client trest.TrellisClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		name := cl.Args()[ARG_EXPERIMENT_NAME][0]

		detail, err := client.GetExperiment(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: experiment:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump found Experiment")
		}
		return nil
	}
}
