package rm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/trellis-ml/trellis/cmd/trellis/env"
	"github.com/trellis-ml/trellis/cmd/trellis/rest/mock"
	endpoint_rm "github.com/trellis-ml/trellis/cmd/trellis/subcommands/endpoint/rm"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/internal/commandline"
	"github.com/trellis-ml/trellis/cmd/trellis/subcommands/logger"
)

func TestRmCommand(t *testing.T) {
	type when struct {
		flags        endpoint_rm.Flags
		endpointName string
		deleteError  error
	}

	type then struct {
		call mock.DeleteEndpointArgs
		err  error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.DeleteEndpoint = func(
				ctx context.Context, name string, deleteConfig bool,
			) error {
				return when.deleteError
			}

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			testee := endpoint_rm.Task()
			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				*env.New(),
				client,
				commandline.MockCommandline[endpoint_rm.Flags]{
					Fullname_: "trellis endpoint rm",
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    when.flags,
					Args_: map[string][]string{
						endpoint_rm.ARG_ENDPOINT_NAME: {when.endpointName},
					},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf("wrong error: (actual, expected) != (%v, %v)", err, then.err)
			}

			if len(client.Calls.DeleteEndpoint) != 1 {
				t.Fatalf("DeleteEndpoint should be called once, but %d times", len(client.Calls.DeleteEndpoint))
			}
			if actual := client.Calls.DeleteEndpoint[0]; actual != then.call {
				t.Errorf("call is not equal (actual,expected): %v,%v", actual, then.call)
			}
		}
	}

	t.Run("when called with a name, it removes the endpoint keeping its config", theory(
		when{
			endpointName: "mnist-serving",
		},
		then{
			call: mock.DeleteEndpointArgs{Name: "mnist-serving", DeleteConfig: false},
			err:  nil,
		},
	))

	t.Run("when called with --delete-config, the config is dropped too", theory(
		when{
			flags:        endpoint_rm.Flags{DeleteConfig: true},
			endpointName: "mnist-serving",
		},
		then{
			call: mock.DeleteEndpointArgs{Name: "mnist-serving", DeleteConfig: true},
			err:  nil,
		},
	))

	{
		fakeError := errors.New("fake error")
		t.Run("when the server fails to remove the endpoint, it returns the error", theory(
			when{
				endpointName: "mnist-serving",
				deleteError:  fakeError,
			},
			then{
				call: mock.DeleteEndpointArgs{Name: "mnist-serving"},
				err:  fakeError,
			},
		))
	}
}
