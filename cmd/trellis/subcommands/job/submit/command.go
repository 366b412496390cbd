package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
)

const ARG_JOB_FILE = "JOB_FILE"

type Flags struct {
	Wait bool `flag:"wait" help:"block until the Job reaches a terminal status"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Submit one training Job.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_JOB_FILE, Required: true,
				Help: "filepath to the Job spec in JSON. Pass - to read from stdin.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Submit one training Job described by a JSON spec file.

The image reference of the spec is pinned to its digest on the server,
and the returned handle carries the pinned reference.

When the spec omits the experiment or the instance shape, defaults
from the trellisenv file are applied before submitting.

By default the command returns as soon as the Job is created; with
--wait it blocks until the Job succeeds or fails, and the returned
handle carries the terminal status.

Requesting a spot wait bound without enabling spot instances is
rejected before anything is launched.
`),
	)
}

// ApplyEnv fills spec fields the trellisenv file has defaults for.
func ApplyEnv(spec apijobs.Spec, e env.TrellisEnv) apijobs.Spec {
	if spec.Experiment == "" {
		spec.Experiment = e.Experiment
	}
	if spec.Instance.CPU == "" {
		spec.Instance.CPU = e.Resource["cpu"]
	}
	if spec.Instance.Memory == "" {
		spec.Instance.Memory = e.Resource["memory"]
	}
	return spec
}

func ReadSpec(cl interface{ Stdin() io.Reader }, filepath string) (apijobs.Spec, error) {
	var source io.Reader
	if filepath == "-" {
		source = cl.Stdin()
	} else {
		f, err := os.Open(filepath)
		if err != nil {
			return apijobs.Spec{}, err
		}
		defer f.Close()
		source = f
	}

	var spec apijobs.Spec
	if err := json.NewDecoder(source).Decode(&spec); err != nil {
		return apijobs.Spec{}, fmt.Errorf("can not parse job spec %s: %w", filepath, err)
	}
	return spec, nil
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
		spec, err := ReadSpec(cl, cl.Args()[ARG_JOB_FILE][0])
		if err != nil {
			return err
		}
		spec = ApplyEnv(spec, trellisEnv)
		if cl.Flags().Wait {
			spec.Wait = true
		}

		handle, err := client.SubmitJob(ctx, spec)
		if err != nil {
			return fmt.Errorf("%w: job:%s", err, spec.Name)
		}

		if handle.Status != "" {
			logger.Printf("finished: %s (status: %s)", handle.Name, handle.Status)
		} else {
			logger.Printf("submitted: %s (image: %s)", handle.Name, handle.Image)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(handle); err != nil {
			logger.Panicf("fail to dump job handle")
		}
		return nil
	}
}
