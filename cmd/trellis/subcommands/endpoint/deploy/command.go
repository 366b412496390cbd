package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
)

type Flags struct {
	Image       string `flag:"image" alias:"i" help:"container image serving the model"`
	ArtifactUri string `flag:"artifact-uri" alias:"a" help:"URI of the model artifact to serve"`
	CPU         string `flag:"cpu" help:"cpu request of the serving instance. Defaults to the trellisenv resource."`
	Memory      string `flag:"memory" help:"memory request of the serving instance. Defaults to the trellisenv resource."`
	GPU         int64  `flag:"gpu" help:"gpus of the serving instance"`
}

const ARG_ENDPOINT_NAME = "ENDPOINT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Deploy a model-serving Endpoint.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_ENDPOINT_NAME, Required: true,
				Help: "name of the Endpoint to be deployed",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Deploy a model-serving Endpoint.

The image reference is pinned to its digest on the server, so the
Endpoint keeps serving the same code even when the tag moves.
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
		flags := cl.Flags()

		if flags.Image == "" {
			return fmt.Errorf("%w: --image is required", flarc.ErrUsage)
		}

		cpu := flags.CPU
		if cpu == "" {
			cpu = trellisEnv.Resource["cpu"]
		}
		memory := flags.Memory
		if memory == "" {
			memory = trellisEnv.Resource["memory"]
		}

		handle, err := client.DeployEndpoint(ctx, apiendpoints.Spec{
			Name:        name,
			Image:       flags.Image,
			ArtifactURI: flags.ArtifactUri,
			Instance: apijobs.Instance{
				CPU:    cpu,
				Memory: memory,
				GPU:    flags.GPU,
			},
		})
		if err != nil {
			return fmt.Errorf("%w: endpoint:%s", err, name)
		}

		logger.Printf("deployed: %s at %s:%d", handle.Name, handle.Host, handle.Port)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(handle); err != nil {
			logger.Panicf("fail to dump endpoint handle")
		}
		return nil
	}
}
