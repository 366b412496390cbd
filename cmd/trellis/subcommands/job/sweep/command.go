package sweep

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
	job_submit "github.com/trellis-ml/trellis/cmd/trellis/subcommands/job/submit"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

const ARG_SWEEP_FILE = "SWEEP_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Submit a sweep of training Jobs.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_SWEEP_FILE, Required: true,
				Help: `filepath to the sweep in JSON, shaped {"jobs": [JOB_SPEC, ...]}. Pass - to read from stdin.`,
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Submit a sweep of training Jobs in one request.

Jobs are dispatched without waiting for each other, and one failing
job does not stop the rest. The result reports, per job, either the
handle of the launched job or the reason it was not launched.

Defaults from the trellisenv file are applied to each spec the same
way "trellis job submit" does.
`),
	)
}

func ReadSweep(cl interface{ Stdin() io.Reader }, filepath string) ([]apijobs.Spec, error) {
	var source io.Reader
	if filepath == "-" {
		source = cl.Stdin()
	} else {
		f, err := os.Open(filepath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		source = f
	}

	var req apijobs.SweepRequest
	if err := json.NewDecoder(source).Decode(&req); err != nil {
		return nil, fmt.Errorf("can not parse sweep %s: %w", filepath, err)
	}
	return req.Jobs, nil
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
		specs, err := ReadSweep(cl, cl.Args()[ARG_SWEEP_FILE][0])
		if err != nil {
			return err
		}
		specs = slices.Map(specs, func(s apijobs.Spec) apijobs.Spec {
			return job_submit.ApplyEnv(s, trellisEnv)
		})

		results, err := client.SweepJobs(ctx, specs)
		if err != nil {
			return err
		}

		launched := 0
		for _, r := range results {
			if r.Error == "" {
				launched++
				continue
			}
			logger.Printf("[WARN] %s: %s", r.Name, r.Error)
		}
		logger.Printf("launched %d/%d jobs", launched, len(results))

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(results); err != nil {
			logger.Panicf("fail to dump sweep results")
		}
		return nil
	}
}
