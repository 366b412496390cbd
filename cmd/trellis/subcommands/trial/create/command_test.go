package create_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/youta-t/flarc"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	"github.com/trellis-ml/trellis/cmd/trellis/rest/mock"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/internal/commandline"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/logger"
	trial_create "github.com/trellis-ml/trellis/cmd/trellis/subcommands/trial/create"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
)

func TestCreateCommand(t *testing.T) {
	type when struct {
		flags      trial_create.Flags
		trialName  string
		trellisEnv env.TrellisEnv
	}

	type then struct {
		spec *apitrials.Spec
		err  error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.RegisterTrial = func(
				ctx context.Context, spec apitrials.Spec,
			) (apitrials.Detail, error) {
				return apitrials.Detail{
					Summary: apitrials.Summary{
						Name:       spec.Name,
						Experiment: spec.Experiment,
					},
					Components: []apicomponents.Summary{},
				}, nil
			}

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			testee := trial_create.Task()
			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				when.trellisEnv,
				client,
				commandline.MockCommandline[trial_create.Flags]{
					Fullname_: "trellis trial create",
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    when.flags,
					Args_: map[string][]string{
						trial_create.ARG_TRIAL_NAME: {when.trialName},
					},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf("wrong error: (actual, expected) != (%v, %v)", err, then.err)
			}

			if then.spec == nil {
				if len(client.Calls.RegisterTrial) != 0 {
					t.Errorf("RegisterTrial should not be called, but called with %v", client.Calls.RegisterTrial)
				}
				return
			}
			if len(client.Calls.RegisterTrial) != 1 {
				t.Fatalf("RegisterTrial should be called once, but %d times", len(client.Calls.RegisterTrial))
			}
			if actual := client.Calls.RegisterTrial[0]; !actual.Equal(*then.spec) {
				t.Errorf("sent spec is not equal (actual,expected): %v,%v", actual, *then.spec)
			}
		}
	}

	t.Run("when called with --experiment, the trial is registered under it", theory(
		when{
			flags:     trial_create.Flags{Experiment: "mnist-tuning"},
			trialName: "trial-7",
		},
		then{
			spec: &apitrials.Spec{Name: "trial-7", Experiment: "mnist-tuning"},
			err:  nil,
		},
	))

	t.Run("when --experiment is omitted, the trellisenv experiment is used", theory(
		when{
			trialName:  "trial-7",
			trellisEnv: env.TrellisEnv{Experiment: "cifar-baseline"},
		},
		then{
			spec: &apitrials.Spec{Name: "trial-7", Experiment: "cifar-baseline"},
			err:  nil,
		},
	))

	t.Run("when --experiment takes precedence over trellisenv", theory(
		when{
			flags:      trial_create.Flags{Experiment: "mnist-tuning"},
			trialName:  "trial-7",
			trellisEnv: env.TrellisEnv{Experiment: "cifar-baseline"},
		},
		then{
			spec: &apitrials.Spec{Name: "trial-7", Experiment: "mnist-tuning"},
			err:  nil,
		},
	))

	t.Run("when no experiment is given anywhere, it is a usage error", theory(
		when{
			trialName: "trial-7",
		},
		then{
			spec: nil,
			err:  flarc.ErrUsage,
		},
	))
}
