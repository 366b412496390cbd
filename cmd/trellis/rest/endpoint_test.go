package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	tprof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
	trst "github.com/trellis-ml/trellis/cmd/trellis/rest"

	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestDeployEndpoint(t *testing.T) {
	t.Run("when server deploys the endpoint, it returns the handle as is", func(t *testing.T) {
		var request *http.Request
		var requestBody apiendpoints.Spec

		expectedResponse := apiendpoints.Handle{
			Name:      "mnist-serving",
			Namespace: "trellis-endpoints",
			Host:      "mnist-serving.trellis-endpoints.svc",
			Port:      8080,
		}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
				t.Fatal(err.Error())
			}
			w.Header().Add("Content-Type", "application/json")
			body, err := json.Marshal(expectedResponse)
			if err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusOK)
			w.Write(body)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		spec := apiendpoints.Spec{
			Name:        "mnist-serving",
			Image:       "registry.example.com/serve:v1",
			ArtifactURI: "s3://trellis-artifacts/model.pt",
			Instance:    apijobs.Instance{CPU: "1", Memory: "2Gi"},
		}
		actualResponse := try.To(testee.DeployEndpoint(context.Background(), spec)).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.Method != http.MethodPost {
			t.Errorf("request is not POST. actual method = %s", request.Method)
		}
		if request.URL.Path != "/endpoints" {
			t.Errorf("request is not /endpoints. actual path = %s", request.URL.Path)
		}
		if !requestBody.Equal(spec) {
			t.Errorf("sent spec is not equal (actual,expected): %v,%v", requestBody, spec)
		}
	})

	t.Run("a server responding with error is given", func(t *testing.T) {
		for _, status := range []int{http.StatusConflict, http.StatusInternalServerError} {
			t.Run(fmt.Sprintf("when server responding with %d, it returns error", status), func(t *testing.T) {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
					w.Header().Set("Content-Type", "application/json")
					buf, err := json.Marshal(apierr.ErrorMessage{Reason: "something wrong"})
					if err != nil {
						t.Fatal(err)
					}
					w.Write(buf)
				})
				server := httptest.NewServer(handler)
				defer server.Close()

				profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
				testee := try.To(trst.NewClient(&profile)).OrFatal(t)

				spec := apiendpoints.Spec{Name: "mnist-serving", Image: "registry.example.com/serve:v1"}
				if _, err := testee.DeployEndpoint(context.Background(), spec); err == nil {
					t.Errorf("no error occured")
				}
			})
		}
	})
}

func TestDeleteEndpoint(t *testing.T) {
	type when struct {
		deleteConfig bool
	}
	type then struct {
		query string
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			var request *http.Request
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				request = r
				w.WriteHeader(http.StatusNoContent)
			})
			server := httptest.NewServer(handler)
			defer server.Close()

			profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
			testee := try.To(trst.NewClient(&profile)).OrFatal(t)

			if err := testee.DeleteEndpoint(context.Background(), "mnist-serving", when.deleteConfig); err != nil {
				t.Fatal(err.Error())
			}

			if request.Method != http.MethodDelete {
				t.Errorf("request is not DELETE. actual method = %s", request.Method)
			}
			if request.URL.Path != "/endpoints/mnist-serving" {
				t.Errorf("request is not /endpoints/:name. actual path = %s", request.URL.Path)
			}
			if request.URL.RawQuery != then.query {
				t.Errorf("query is not equal (actual,expected): %s,%s", request.URL.RawQuery, then.query)
			}
		}
	}

	t.Run("when deleteConfig is true, the query parameter is sent", theory(
		when{deleteConfig: true},
		then{query: "deleteConfig=true"},
	))
	t.Run("when deleteConfig is false, no query parameter is sent", theory(
		when{deleteConfig: false},
		then{query: ""},
	))
}
