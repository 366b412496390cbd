package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tprof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
	trst "github.com/trellis-ml/trellis/cmd/trellis/rest"

	apistorage "github.com/trellis-ml/trellis/pkg/api/types/storage"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestStorageInfo(t *testing.T) {
	t.Run("when server returns the bucket, it returns that as is", func(t *testing.T) {
		var request *http.Request
		expectedResponse := apistorage.Info{Bucket: "trellis-datasets"}

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

		actualResponse := try.To(testee.StorageInfo(context.Background())).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.Method != http.MethodGet {
			t.Errorf("request is not GET. actual method = %s", request.Method)
		}
		if request.URL.Path != "/storage" {
			t.Errorf("request is not /storage. actual path = %s", request.URL.Path)
		}
	})
}
