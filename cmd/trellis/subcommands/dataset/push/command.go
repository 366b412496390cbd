package push

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	trest "github.com/trellis-ml/trellis/cmd/trellis/rest"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/plane/storage"
)

type Flags struct {
	Prefix string `flag:"prefix" help:"key prefix on the bucket"`
}

// Connect opens the bucket the server told us about.
type Connect func(ctx context.Context, bucket string) (storage.Bucket, error)

type Command struct {
	connect     Connect
	progressOut io.Writer
	output      io.Writer
}

type Option func(*Command) *Command

func WithConnect(connect Connect) Option {
	return func(c *Command) *Command {
		c.connect = connect
		return c
	}
}

func WithProgressOut(w io.Writer) Option {
	return func(c *Command) *Command {
		c.progressOut = w
		return c
	}
}

func WithOutput(w io.Writer) Option {
	return func(c *Command) *Command {
		c.output = w
		return c
	}
}

const ARG_SOURCE = "SOURCE"

func New(opt ...Option) (flarc.Command, error) {
	return flarc.NewCommand(
		"push (stage) dataset files to the cluster storage",
		Flags{
			Prefix: "datasets",
		},
		flarc.Args{
			{
				Name: ARG_SOURCE, Repeatable: true, Required: true,
				Help: "dataset file to be staged",
			},
		},
		common.NewTask(Task(opt...)),
		flarc.WithDescription(`
Stage local dataset files on the bucket the trellis server uses.

The bucket is discovered from the server, so the same profile works
across clusters. For each staged file, its storage URI is printed;
pass these URIs as input channels of a Job spec.
`),
	)
}

func Task(opt ...Option) common.Task[Flags] {
	cmd := &Command{
		connect:     storage.Connect,
		progressOut: os.Stderr,
		output:      os.Stdout,
	}
	for _, o := range opt {
		cmd = o(cmd)
	}

	return func(
		ctx context.Context,
		l *log.Logger,
		trellisEnv env.TrellisEnv,
		client trest.TrellisClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		info, err := client.StorageInfo(ctx)
		if err != nil {
			return err
		}
		bucket, err := cmd.connect(ctx, info.Bucket)
		if err != nil {
			return err
		}

		prefix := cl.Flags().Prefix
		staged := []apicomponents.Artifact{}

		sources := cl.Args()[ARG_SOURCE]
		total := len(sources)
		for n, s := range sources {
			stat, err := os.Stat(s)
			if err != nil {
				l.Printf("%s: %s -- skipped", err, s)
				continue
			}
			if stat.IsDir() {
				l.Printf("%s is a directory -- skipped", s)
				continue
			}

			f, err := os.Open(s)
			if err != nil {
				return err
			}

			key := path.Join(prefix, filepath.Base(s))

			bar := pb.New64(stat.Size())
			bar.Set(pb.Bytes, true)
			bar.SetWriter(cmd.progressOut)
			if err := bar.Err(); err != nil {
				f.Close()
				return err
			}

			bar.Start()
			l.Printf("[[%d/%d]] uploading... %s\n", n+1, total, s)
			err = bucket.Upload(ctx, key, bar.NewProxyReader(f))
			bar.Finish()
			f.Close()
			if err != nil {
				return err
			}

			location := bucket.LocationOf(key)
			l.Printf("[[%d/%d]] [OK] done: %s -> %s", n+1, total, s, location)
			staged = append(staged, apicomponents.Artifact{
				Name: filepath.Base(s),
				URI:  location,
			})
		}

		enc := json.NewEncoder(cmd.output)
		enc.SetIndent("", "    ")
		if err := enc.Encode(staged); err != nil {
			l.Panicf("fail to dump staged datasets")
		}
		return nil
	}
}
