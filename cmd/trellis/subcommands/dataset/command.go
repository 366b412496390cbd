package dataset

import (
	"github.com/youta-t/flarc"

	dataset_push "github.com/trellis-ml/trellis/cmd/trellis/subcommands/dataset/push"
)

func New() (flarc.Command, error) {
	push, err := dataset_push.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Stage datasets on the cluster storage.",
		struct{}{},
		flarc.WithSubcommand("push", push),
	)
}
