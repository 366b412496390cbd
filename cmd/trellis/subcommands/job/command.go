package job

import (
	"github.com/youta-t/flarc"

	job_submit "github.com/trellis-ml/trellis/cmd/trellis/subcommands/job/submit"
	job_sweep "github.com/trellis-ml/trellis/cmd/trellis/subcommands/job/sweep"
)

func New() (flarc.Command, error) {
	submit, err := job_submit.New()
	if err != nil {
		return nil, err
	}
	sweep, err := job_sweep.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Launch training Jobs on the cluster.",
		struct{}{},
		flarc.WithSubcommand("submit", submit),
		flarc.WithSubcommand("sweep", sweep),
	)
}
