package create_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	"github.com/trellis-ml/trellis/cmd/trellis/rest/mock"
	exp_create "github.com/trellis-ml/trellis/cmd/trellis/subcommands/experiment/create"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/internal/commandline"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/logger"
	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestCreateCommand(t *testing.T) {
	type when struct {
		flags          exp_create.Flags
		experimentName string
		detail         apiexperiments.Detail
		registerError  error
	}

	type then struct {
		spec apiexperiments.Spec
		err  error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.RegisterExperiment = func(
				ctx context.Context, spec apiexperiments.Spec,
			) (apiexperiments.Detail, error) {
				return when.detail, when.registerError
			}

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			testee := exp_create.Task()
			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				*env.New(),
				client,
				commandline.MockCommandline[exp_create.Flags]{
					Fullname_: "trellis experiment create",
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    when.flags,
					Args_: map[string][]string{
						exp_create.ARG_EXPERIMENT_NAME: {when.experimentName},
					},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf("wrong error: (actual, expected) != (%v, %v)", err, then.err)
			}

			if len(client.Calls.RegisterExperiment) != 1 {
				t.Fatalf("RegisterExperiment should be called once, but %d times", len(client.Calls.RegisterExperiment))
			}
			if actual := client.Calls.RegisterExperiment[0]; !actual.Equal(then.spec) {
				t.Errorf("sent spec is not equal (actual,expected): %v,%v", actual, then.spec)
			}

			if then.err != nil {
				return
			}

			var actual apiexperiments.Detail
			if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
				t.Fatal(err)
			}
			if !actual.Equal(when.detail) {
				t.Errorf("output is not equal (actual,expected): %v,%v", actual, when.detail)
			}
		}
	}

	t.Run("when called with a name, it registers the experiment and writes it out", theory(
		when{
			experimentName: "mnist-tuning",
			detail: apiexperiments.Detail{
				Name: "mnist-tuning",
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-01T12:00:00+00:00",
				)).OrFatal(t),
			},
		},
		then{
			spec: apiexperiments.Spec{Name: "mnist-tuning"},
			err:  nil,
		},
	))

	t.Run("when called with --description, it is sent to the server", theory(
		when{
			flags:          exp_create.Flags{Description: "hyperparameter search"},
			experimentName: "mnist-tuning",
			detail: apiexperiments.Detail{
				Name:        "mnist-tuning",
				Description: "hyperparameter search",
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-01T12:00:00+00:00",
				)).OrFatal(t),
			},
		},
		then{
			spec: apiexperiments.Spec{
				Name:        "mnist-tuning",
				Description: "hyperparameter search",
			},
			err: nil,
		},
	))

	{
		fakeError := errors.New("fake error")
		t.Run("when the server rejects the experiment, it returns the error", theory(
			when{
				experimentName: "mnist-tuning",
				registerError:  fakeError,
			},
			then{
				spec: apiexperiments.Spec{Name: "mnist-tuning"},
				err:  fakeError,
			},
		))
	}
}
