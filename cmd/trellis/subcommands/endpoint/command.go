package endpoint

import (
	"github.com/youta-t/flarc"

	endpoint_deploy "github.com/trellis-ml/trellis/cmd/trellis/subcommands/endpoint/deploy"
	endpoint_rm "github.com/trellis-ml/trellis/cmd/trellis/subcommands/endpoint/rm"
)

func New() (flarc.Command, error) {
	deploy, err := endpoint_deploy.New()
	if err != nil {
		return nil, err
	}
	rm, err := endpoint_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage model-serving Endpoints.",
		struct{}{},
		flarc.WithSubcommand("deploy", deploy),
		flarc.WithSubcommand("rm", rm),
	)
}
