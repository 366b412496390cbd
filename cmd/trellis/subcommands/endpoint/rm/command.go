package rm

import (
	"context"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
)

type Flags struct {
	DeleteConfig bool `flag:"delete-config" help:"drop the Endpoint configuration too"`
}

const ARG_ENDPOINT_NAME = "ENDPOINT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove a model-serving Endpoint.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_ENDPOINT_NAME, Required: true,
				Help: "name of the Endpoint to be removed",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Remove a model-serving Endpoint.

By default its configuration is kept, so the Endpoint can be deployed
again with the same settings. Pass --delete-config to drop it.
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
		name := cl.Args()[ARG_ENDPOINT_NAME][0]

		if err := client.DeleteEndpoint(ctx, name, cl.Flags().DeleteConfig); err != nil {
			return fmt.Errorf("%w: endpoint:%s", err, name)
		}

		logger.Printf("removed: %s", name)
		return nil
	}
}
