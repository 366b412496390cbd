package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tprof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
	trst "github.com/trellis-ml/trellis/cmd/trellis/rest"

	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestFindComponent(t *testing.T) {
	t.Run("it passes the filter as query parameters", func(t *testing.T) {
		var request *http.Request
		expectedResponse := []apicomponents.Detail{
			{
				Summary: apicomponents.Summary{
					Name:        "train-1",
					DisplayName: "train",
					Status:      "completed",
					StartedAt:   rfctime.New(time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)),
				},
				Parameters: map[string]apicomponents.ParamValue{},
				Inputs:     []apicomponents.Artifact{},
				Outputs:    []apicomponents.Artifact{},
				Metrics:    map[string][]apicomponents.Observation{},
			},
		}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
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

		actualResponse := try.To(testee.FindComponent(
			context.Background(),
			trst.FindComponentParameter{
				Experiment: "mnist-tuning", Status: "completed",
			},
		)).OrFatal(t)
		if !cmp.SliceEqWith(actualResponse, expectedResponse, apicomponents.Detail.Equal) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.URL.Path != "/components" {
			t.Errorf("request is not /components. actual path = %s", request.URL.Path)
		}
		query := request.URL.Query()
		if query.Get("experiment") != "mnist-tuning" {
			t.Errorf("query experiment is not passed. actual query = %s", request.URL.RawQuery)
		}
		if query.Get("status") != "completed" {
			t.Errorf("query status is not passed. actual query = %s", request.URL.RawQuery)
		}
		if query.Has("trial") || query.Has("name") || query.Has("displayName") {
			t.Errorf("empty filter fields should not be sent. actual query = %s", request.URL.RawQuery)
		}
	})
}

func TestLogParameters(t *testing.T) {
	t.Run("it sends parameters and accepts no content response", func(t *testing.T) {
		var request *http.Request
		var requestBody apicomponents.LogParametersRequest

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusNoContent)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		lr := 0.01
		optimizer := "adam"
		parameters := map[string]apicomponents.ParamValue{
			"lr":        {Number: &lr},
			"optimizer": {String: &optimizer},
		}
		if err := testee.LogParameters(context.Background(), "train-1", parameters); err != nil {
			t.Fatal(err.Error())
		}

		if request.Method != http.MethodPut {
			t.Errorf("request is not PUT. actual method = %s", request.Method)
		}
		if request.URL.Path != "/components/train-1/parameters" {
			t.Errorf("request is not /components/:name/parameters. actual path = %s", request.URL.Path)
		}
		if !cmp.MapEqWith(requestBody.Parameters, parameters, func(a, b apicomponents.ParamValue) bool {
			return a.Equal(&b)
		}) {
			t.Errorf("sent parameters are not equal (actual,expected): %v,%v", requestBody.Parameters, parameters)
		}
	})

	t.Run("a server responding with error is given", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError} {
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

				lr := 0.01
				parameters := map[string]apicomponents.ParamValue{"lr": {Number: &lr}}
				if err := testee.LogParameters(context.Background(), "train-1", parameters); err == nil {
					t.Errorf("no error occured")
				}
			})
		}
	})
}

func TestAppendObservations(t *testing.T) {
	t.Run("it posts observations of one metric", func(t *testing.T) {
		var request *http.Request
		var requestBody apicomponents.AppendObservationsRequest

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusNoContent)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		observations := []apicomponents.Observation{
			{
				Timestamp: rfctime.New(time.Date(2026, 8, 3, 10, 1, 0, 0, time.UTC)),
				Value:     0.87,
			},
			{
				Timestamp: rfctime.New(time.Date(2026, 8, 3, 10, 2, 0, 0, time.UTC)),
				Value:     0.91,
			},
		}
		if err := testee.AppendObservations(
			context.Background(), "train-1", "validation:accuracy", observations,
		); err != nil {
			t.Fatal(err.Error())
		}

		if request.Method != http.MethodPost {
			t.Errorf("request is not POST. actual method = %s", request.Method)
		}
		if request.URL.Path != "/components/train-1/observations" {
			t.Errorf("request is not /components/:name/observations. actual path = %s", request.URL.Path)
		}
		expectedBody := apicomponents.AppendObservationsRequest{
			Metric: "validation:accuracy", Observations: observations,
		}
		if !requestBody.Equal(expectedBody) {
			t.Errorf("sent body is not equal (actual,expected): %v,%v", requestBody, expectedBody)
		}
	})
}

func TestAttachComponent(t *testing.T) {
	t.Run("it puts the trial name to attach", func(t *testing.T) {
		var request *http.Request
		var requestBody apicomponents.AttachRequest

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusNoContent)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := tprof.TrellisProfile{ApiRoot: server.URL, Token: "test-token"}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		if err := testee.AttachComponent(context.Background(), "trial-7", "train-1"); err != nil {
			t.Fatal(err.Error())
		}

		if request.Method != http.MethodPut {
			t.Errorf("request is not PUT. actual method = %s", request.Method)
		}
		if request.URL.Path != "/components/train-1/attach" {
			t.Errorf("request is not /components/:name/attach. actual path = %s", request.URL.Path)
		}
		if requestBody.Trial != "trial-7" {
			t.Errorf("sent trial is not equal (actual,expected): %s,%s", requestBody.Trial, "trial-7")
		}
	})
}

func TestFinishComponent(t *testing.T) {
	t.Run("it puts the final status and returns the updated detail", func(t *testing.T) {
		var request *http.Request
		var requestBody apicomponents.FinishRequest

		endedAt := time.Date(2026, 8, 3, 11, 0, 0, 0, time.UTC)
		expectedResponse := apicomponents.Detail{
			Summary: apicomponents.Summary{
				Name:        "train-1",
				DisplayName: "train",
				Status:      "completed",
				StartedAt:   rfctime.New(time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)),
				EndedAt: func() *rfctime.RFC3339 {
					e := rfctime.New(endedAt)
					return &e
				}(),
			},
			Parameters: map[string]apicomponents.ParamValue{},
			Inputs:     []apicomponents.Artifact{},
			Outputs:    []apicomponents.Artifact{},
			Metrics:    map[string][]apicomponents.Observation{},
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

		actualResponse := try.To(testee.FinishComponent(
			context.Background(), "train-1", "completed", endedAt,
		)).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.Method != http.MethodPut {
			t.Errorf("request is not PUT. actual method = %s", request.Method)
		}
		if request.URL.Path != "/components/train-1/finish" {
			t.Errorf("request is not /components/:name/finish. actual path = %s", request.URL.Path)
		}
		expectedBody := apicomponents.FinishRequest{
			Status: "completed", EndedAt: rfctime.New(endedAt),
		}
		if !requestBody.Equal(expectedBody) {
			t.Errorf("sent body is not equal (actual,expected): %v,%v", requestBody, expectedBody)
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

				if _, err := testee.FinishComponent(
					context.Background(), "train-1", "failed", time.Now(),
				); err == nil {
					t.Errorf("no error occured")
				}
			})
		}
	})
}
