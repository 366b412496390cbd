package trial

import (
	"github.com/youta-t/flarc"

	trial_create "github.com/trellis-ml/trellis/cmd/trellis/subcommands/trial/create"
	trial_find "github.com/trellis-ml/trellis/cmd/trellis/subcommands/trial/find"
	trial_show "github.com/trellis-ml/trellis/cmd/trellis/subcommands/trial/show"
)

func New() (flarc.Command, error) {
	create, err := trial_create.New()
	if err != nil {
		return nil, err
	}
	show, err := trial_show.New()
	if err != nil {
		return nil, err
	}
	find, err := trial_find.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage Trellis Trials.",
		struct{}{},
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
	)
}
