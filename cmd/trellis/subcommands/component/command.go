package component

import (
	"github.com/youta-t/flarc"

	comp_find "github.com/trellis-ml/trellis/cmd/trellis/subcommands/component/find"
	comp_show "github.com/trellis-ml/trellis/cmd/trellis/subcommands/component/show"
)

func New() (flarc.Command, error) {
	show, err := comp_show.New()
	if err != nil {
		return nil, err
	}
	find, err := comp_find.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect Trial Components.",
		struct{}{},
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
	)
}
