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

	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestQuery(t *testing.T) {
	t.Run("when server builds a table, it returns that as is", func(t *testing.T) {
		var request *http.Request
		var requestBody apianalytics.Query

		lr := 0.01
		expectedResponse := apianalytics.Table{
			Metrics:    []string{"validation:accuracy"},
			Parameters: []string{"lr"},
			Rows: []apianalytics.Row{
				{
					Component:   "train-1",
					DisplayName: "train",
					Parameters: map[string]*apicomponents.ParamValue{
						"lr": {Number: &lr},
					},
					Metrics: map[string]apianalytics.MetricSummary{
						"validation:accuracy": {
							Min: 0.81, Max: 0.93, Avg: 0.88, StdDev: 0.03,
							Last: 0.93, Count: 12,
						},
					},
				},
			},
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

		query := apianalytics.Query{
			Experiment:  "mnist-tuning",
			Trial:       "trial-1",
			DisplayName: "train",
			Status:      "completed",
			Metrics:     []string{"validation:accuracy"},
			Parameters:  []string{"lr"},
			SortBy:      "validation:accuracy - Max",
			Order:       "descending",
		}
		actualResponse := try.To(testee.Query(context.Background(), query)).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.Method != http.MethodPost {
			t.Errorf("request is not POST. actual method = %s", request.Method)
		}
		if request.URL.Path != "/analytics" {
			t.Errorf("request is not /analytics. actual path = %s", request.URL.Path)
		}
		if !requestBody.Equal(query) {
			t.Errorf("sent query is not equal (actual,expected): %v,%v", requestBody, query)
		}
	})

	t.Run("a server responding with error is given", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
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

				query := apianalytics.Query{Metrics: []string{"validation:accuracy"}}
				if _, err := testee.Query(context.Background(), query); err == nil {
					t.Errorf("no error occured")
				}
			})
		}
	})
}
