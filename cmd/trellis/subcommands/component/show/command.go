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

const ARG_COMPONENT_NAME = "COMPONENT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Return the Trial Component information for the specified name.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COMPONENT_NAME, Required: true,
				Help: "name of the Trial Component to be shown",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Return the Trial Component information for the specified name,
including its parameters, artifacts and metric series.
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
		name := cl.Args()[ARG_COMPONENT_NAME][0]

		detail, err := client.GetComponent(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: component:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump found Trial Component")
		}
		return nil
	}
}
