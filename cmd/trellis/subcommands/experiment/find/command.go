package find

import (
	"context"
	"encoding/json"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List Experiments in creation order.",
		struct{}{},
		flarc.Args{},
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
		details, err := client.FindExperiment(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(details); err != nil {
			logger.Panicf("fail to dump found Experiments")
		}
		return nil
	}
}
