package experiment

import (
	"github.com/youta-t/flarc"

	exp_create "github.com/trellis-ml/trellis/cmd/trellis/subcommands/experiment/create"
	exp_find "github.com/trellis-ml/trellis/cmd/trellis/subcommands/experiment/find"
	exp_show "github.com/trellis-ml/trellis/cmd/trellis/subcommands/experiment/show"
)

func New() (flarc.Command, error) {
	create, err := exp_create.New()
	if err != nil {
		return nil, err
	}
	show, err := exp_show.New()
	if err != nil {
		return nil, err
	}
	find, err := exp_find.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage Trellis Experiments.",
		struct{}{},
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
	)
}
