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

type Flags struct {
	Experiment string `flag:"experiment" alias:"e" help:"restrict to Trials of this Experiment"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find Trials.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Find Trials.

Without flags, all Trials are listed. With --experiment, only Trials
of that Experiment are listed, in creation order.
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
		details, err := client.FindTrial(ctx, cl.Flags().Experiment)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(details); err != nil {
			logger.Panicf("fail to dump found Trials")
		}
		return nil
	}
}
