package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/youta-t/flarc"

	subcomponent "github.com/trellis-ml/trellis/cmd/trellis/subcommands/component"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	subdataset "github.com/trellis-ml/trellis/cmd/trellis/subcommands/dataset"
	subendpoint "github.com/trellis-ml/trellis/cmd/trellis/subcommands/endpoint"
	subexperiment "github.com/trellis-ml/trellis/cmd/trellis/subcommands/experiment"
	subinit "github.com/trellis-ml/trellis/cmd/trellis/subcommands/init"
	subjob "github.com/trellis-ml/trellis/cmd/trellis/subcommands/job"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/logger"
	subquery "github.com/trellis-ml/trellis/cmd/trellis/subcommands/query"
	subtrial "github.com/trellis-ml/trellis/cmd/trellis/subcommands/trial"
	subversion "github.com/trellis-ml/trellis/cmd/trellis/subcommands/version"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	experiment := try.To(subexperiment.New()).OrFatal(logger)
	trial := try.To(subtrial.New()).OrFatal(logger)
	component := try.To(subcomponent.New()).OrFatal(logger)
	query := try.To(subquery.New()).OrFatal(logger)
	job := try.To(subjob.New()).OrFatal(logger)
	dataset := try.To(subdataset.New()).OrFatal(logger)
	endpoint := try.To(subendpoint.New()).OrFatal(logger)
	version := try.To(subversion.New()).OrFatal(logger)

	trellis := try.To(
		flarc.NewCommandGroup(
			"Trellis Commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("experiment", experiment),
			flarc.WithSubcommand("trial", trial),
			flarc.WithSubcommand("component", component),
			flarc.WithSubcommand("query", query),
			flarc.WithSubcommand("job", job),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("endpoint", endpoint),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, trellis, flarc.WithHelp(true)))
}
