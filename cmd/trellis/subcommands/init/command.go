package init

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"

	prof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/common"
)

const ARG_TRELLIS_PROFILE_FILE = "TRELLIS_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"initialize this directory as a trellis project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_TRELLIS_PROFILE_FILE, Required: true,
				Help: "filepath to the trellis profile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Register a new trellis profile into your profile store.

A trellis profile is a file which contains the endpoint and the API
token of a trellis server. "{{ .Command }}" registers the given profile
into your profile store.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task() common.TrellisTaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_TRELLIS_PROFILE_FILE][0]

		profStore, err := prof.LoadProfileStore(commonFlag.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			// ok.
			profStore = prof.ProfileStore{}
		} else if err != nil {
			return err
		}

		profName := commonFlag.Profile
		newProf := new(prof.TrellisProfile)
		{
			content, err := os.ReadFile(profFile)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(content, newProf); err != nil {
				return err
			}
		}
		if err := newProf.Verify(); err != nil {
			return err
		}

		profStore[profName] = newProf
		if err := profStore.Save(commonFlag.ProfileStore); err != nil {
			return err
		}
		logger.Printf(
			"profile %s is saved to %s", profName, commonFlag.ProfileStore,
		)

		{
			f, err := os.OpenFile(".trellisprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
			if err != nil {
				return err
			}
			defer f.Close()
			f.Write([]byte(profName))
		}

		return nil
	}
}
