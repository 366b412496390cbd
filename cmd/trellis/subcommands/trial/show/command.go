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

const ARG_TRIAL_NAME = "TRIAL_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Return the Trial information for the specified name.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_TRIAL_NAME, Required: true,
				Help: "name of the Trial to be shown",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Return the Trial information for the specified name.

Components are listed in the order they were attached to the Trial.
`),
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
		name := cl.Args()[ARG_TRIAL_NAME][0]

		detail, err := client.GetTrial(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: trial:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump found Trial")
		}
		return nil
	}
}
