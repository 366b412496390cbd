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
	Experiment  string `flag:"experiment" alias:"e" help:"restrict to Components under this Experiment"`
	Trial       string `flag:"trial" help:"restrict to Components attached to this Trial"`
	Name        string `flag:"name" help:"find the Component with this name"`
	DisplayName string `flag:"display-name" help:"restrict to Components with this display name"`
	Status      string `flag:"status" metavar:"created|completed|failed" help:"restrict to Components in this status"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find Trial Components that satisfy all specified conditions.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Find Trial Components that satisfy all specified conditions.

Without flags, all Components are listed.
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
		details, err := client.FindComponent(ctx, trest.FindComponentParameter{
			Experiment:  flags.Experiment,
			Trial:       flags.Trial,
			Name:        flags.Name,
			DisplayName: flags.DisplayName,
			Status:      flags.Status,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(details); err != nil {
			logger.Panicf("fail to dump found Trial Components")
		}
		return nil
	}
}
