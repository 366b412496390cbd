package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	handlers "github.com/trellis-ml/trellis/cmd/trellisd/handlers"
	httptestutil "github.com/trellis-ml/trellis/internal/testutils/http"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/domain"
	compmock "github.com/trellis-ml/trellis/pkg/domain/component/db/mock"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/pointer"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestComponentRegisterHandler(t *testing.T) {
	startedAt := try.To(rfctime.ParseRFC3339DateTime(
		"2024-04-01T12:00:00+00:00",
	)).OrFatal(t).Time()

	t.Run("it registers a component in created status", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.Create = func(ctx context.Context, c domain.ComponentBody) error {
			return nil
		}
		mockComp.Impl.Get = func(ctx context.Context, names []string) (map[string]domain.TrialComponent, error) {
			return map[string]domain.TrialComponent{
				"comp-cafe": {
					ComponentBody: domain.ComponentBody{
						Name: "comp-cafe", DisplayName: "training",
						Status: domain.Created, StartedAt: startedAt,
					},
				},
			}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/components",
			strings.NewReader(`{"name": "comp-cafe", "displayName": "training", "startedAt": "2024-04-01T12:00:00+00:00"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.ComponentRegisterHandler(mockComp)
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		expectedCreate := []domain.ComponentBody{
			{
				Name: "comp-cafe", DisplayName: "training",
				Status: domain.Created, StartedAt: startedAt,
			},
		}
		if !cmp.SliceEqWith(mockComp.Calls.Create, expectedCreate, domain.ComponentBody.Equal) {
			t.Errorf(
				"unmatch: params for ComponentInterface.Create:\n- actual:\n%+v\n- expected:\n%+v",
				mockComp.Calls.Create, expectedCreate,
			)
		}

		actual := apicomponents.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		if actual.Name != "comp-cafe" || actual.Status != string(domain.Created) {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	t.Run("(Conflict) when the component name is taken", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.Create = func(ctx context.Context, c domain.ComponentBody) error {
			return domerr.ErrAlreadyExists
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/components",
			strings.NewReader(`{"name": "comp-cafe", "startedAt": "2024-04-01T12:00:00+00:00"}`),
			httptestutil.ContentType("application/json"),
		)

		err := handlers.ComponentRegisterHandler(mockComp)(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusConflict {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusConflict)
		}
	})
}

func TestLogParametersHandler(t *testing.T) {
	t.Run("it merges parameters into the component", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.LogParameters = func(ctx context.Context, name string, params map[string]domain.ParamValue) error {
			return nil
		}

		e := echo.New()
		c, respRec := httptestutil.Put(
			e, "/api/components/comp-cafe/parameters",
			strings.NewReader(`{"parameters": {"lr": {"number": 0.001}, "optimizer": {"string": "adam"}}}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		testee := handlers.LogParametersHandler(mockComp)
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if respRec.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusNoContent)
		}

		if mockComp.Calls.LogParameters.Times() != 1 {
			t.Fatalf("LogParameters is called %d times", mockComp.Calls.LogParameters.Times())
		}
		call := mockComp.Calls.LogParameters[0]
		if call.ComponentName != "comp-cafe" {
			t.Errorf("component name: (actual, expected) = (%s, comp-cafe)", call.ComponentName)
		}
		expected := map[string]domain.ParamValue{
			"lr":        domain.NumberParam(0.001),
			"optimizer": domain.StringParam("adam"),
		}
		if !cmp.MapEqWith(call.Parameters, expected, domain.ParamValue.Equal) {
			t.Errorf(
				"parameters: (actual, expected) = \n(%+v, \n%+v)",
				call.Parameters, expected,
			)
		}
	})

	t.Run("it returns error response", func(t *testing.T) {
		type when struct {
			body  string
			error error
		}
		type then struct {
			statusCode int
		}

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"(Not Found) when the component does not exist": {
				when{
					body:  `{"parameters": {"lr": {"number": 0.001}}}`,
					error: domerr.ErrMissing,
				},
				then{statusCode: http.StatusNotFound},
			},
			"(Bad Request) when a parameter has both number and string": {
				when{
					body: `{"parameters": {"lr": {"number": 0.001, "string": "x"}}}`,
				},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when a parameter has neither number nor string": {
				when{
					body: `{"parameters": {"lr": {}}}`,
				},
				then{statusCode: http.StatusBadRequest},
			},
			"(Internal Server Error) when ComponentInterface.LogParameters cause error": {
				when{
					body:  `{"parameters": {"lr": {"number": 0.001}}}`,
					error: errors.New("dummy error"),
				},
				then{statusCode: http.StatusInternalServerError},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockComp := compmock.NewComponentInterface()
				mockComp.Impl.LogParameters = func(ctx context.Context, name string, params map[string]domain.ParamValue) error {
					return testcase.when.error
				}

				e := echo.New()
				c, _ := httptestutil.Put(
					e, "/api/components/comp-cafe/parameters",
					strings.NewReader(testcase.when.body),
					httptestutil.ContentType("application/json"),
				)
				c.SetParamNames("name")
				c.SetParamValues("comp-cafe")

				err := handlers.LogParametersHandler(mockComp)(c)
				if err == nil {
					t.Fatalf("no error but it is not expected result")
				}
				var echoErr *echo.HTTPError
				if !errors.As(err, &echoErr) {
					t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
				}
				if echoErr.Code != testcase.then.statusCode {
					t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, testcase.then.statusCode)
				}
			})
		}
	})
}

func TestAttachComponentHandler(t *testing.T) {
	t.Run("it attaches the component to the trial", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.Attach = func(ctx context.Context, trialName, componentName string) error {
			return nil
		}

		e := echo.New()
		c, respRec := httptestutil.Put(
			e, "/api/components/comp-cafe/attach",
			strings.NewReader(`{"trial": "trial-1"}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		if err := handlers.AttachComponentHandler(mockComp)(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if respRec.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusNoContent)
		}

		expected := []struct {
			TrialName     string
			ComponentName string
		}{
			{TrialName: "trial-1", ComponentName: "comp-cafe"},
		}
		if !cmp.SliceEq(mockComp.Calls.Attach, expected) {
			t.Errorf(
				"unmatch: params for ComponentInterface.Attach:\n- actual:\n%+v\n- expected:\n%+v",
				mockComp.Calls.Attach, expected,
			)
		}
	})

	t.Run("(Not Found) when the trial or the component does not exist", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.Attach = func(ctx context.Context, trialName, componentName string) error {
			return domerr.ErrMissing
		}

		e := echo.New()
		c, _ := httptestutil.Put(
			e, "/api/components/comp-cafe/attach",
			strings.NewReader(`{"trial": "no-such"}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		err := handlers.AttachComponentHandler(mockComp)(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusNotFound)
		}
	})
}

func TestFinishComponentHandler(t *testing.T) {
	startedAt := try.To(rfctime.ParseRFC3339DateTime(
		"2024-04-01T12:00:00+00:00",
	)).OrFatal(t).Time()
	endedAt := startedAt.Add(time.Hour)

	t.Run("it finalizes the component", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.Finish = func(ctx context.Context, name string, status domain.ComponentStatus, at time.Time) error {
			return nil
		}
		mockComp.Impl.Get = func(ctx context.Context, names []string) (map[string]domain.TrialComponent, error) {
			return map[string]domain.TrialComponent{
				"comp-cafe": {
					ComponentBody: domain.ComponentBody{
						Name: "comp-cafe", Status: domain.Completed,
						StartedAt: startedAt, EndedAt: pointer.Ref(endedAt),
					},
				},
			}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Put(
			e, "/api/components/comp-cafe/finish",
			strings.NewReader(`{"status": "completed", "endedAt": "2024-04-01T13:00:00+00:00"}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		if err := handlers.FinishComponentHandler(mockComp)(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if mockComp.Calls.Finish.Times() != 1 {
			t.Fatalf("Finish is called %d times", mockComp.Calls.Finish.Times())
		}
		call := mockComp.Calls.Finish[0]
		if call.ComponentName != "comp-cafe" || call.Status != domain.Completed || !call.EndedAt.Equal(endedAt) {
			t.Errorf("unexpected Finish call: %+v", call)
		}

		actual := apicomponents.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		if actual.Status != string(domain.Completed) || actual.EndedAt == nil {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	t.Run("it returns error response", func(t *testing.T) {
		type when struct {
			body  string
			error error
		}
		type then struct {
			statusCode int
		}

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"(Conflict) when the component is finalized already": {
				when{
					body:  `{"status": "failed", "endedAt": "2024-04-01T13:00:00+00:00"}`,
					error: domerr.ErrInvalidStatusTransition,
				},
				then{statusCode: http.StatusConflict},
			},
			"(Bad Request) when status is unknown": {
				when{
					body: `{"status": "paused", "endedAt": "2024-04-01T13:00:00+00:00"}`,
				},
				then{statusCode: http.StatusBadRequest},
			},
			"(Not Found) when the component does not exist": {
				when{
					body:  `{"status": "completed", "endedAt": "2024-04-01T13:00:00+00:00"}`,
					error: domerr.ErrMissing,
				},
				then{statusCode: http.StatusNotFound},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockComp := compmock.NewComponentInterface()
				mockComp.Impl.Finish = func(ctx context.Context, name string, status domain.ComponentStatus, at time.Time) error {
					return testcase.when.error
				}

				e := echo.New()
				c, _ := httptestutil.Put(
					e, "/api/components/comp-cafe/finish",
					strings.NewReader(testcase.when.body),
					httptestutil.ContentType("application/json"),
				)
				c.SetParamNames("name")
				c.SetParamValues("comp-cafe")

				err := handlers.FinishComponentHandler(mockComp)(c)
				if err == nil {
					t.Fatalf("no error but it is not expected result")
				}
				var echoErr *echo.HTTPError
				if !errors.As(err, &echoErr) {
					t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
				}
				if echoErr.Code != testcase.then.statusCode {
					t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, testcase.then.statusCode)
				}
			})
		}
	})
}

func TestFindComponentHandler(t *testing.T) {
	t.Run("it passes query params as a find query", func(t *testing.T) {
		type when struct {
			request string
		}
		type then struct {
			query domain.ComponentFindQuery
		}

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"when it is queried nothing": {
				when{request: "/api/components"},
				then{query: domain.ComponentFindQuery{}},
			},
			"when it is queried by experiment": {
				when{request: "/api/components?experiment=exp-1"},
				then{query: domain.ComponentFindQuery{ExperimentName: "exp-1"}},
			},
			"when it is queried by trial and status": {
				when{request: "/api/components?trial=trial-1&status=completed"},
				then{query: domain.ComponentFindQuery{
					TrialName: "trial-1", Status: domain.Completed,
				}},
			},
			"when it is queried by display name": {
				when{request: "/api/components?displayName=training"},
				then{query: domain.ComponentFindQuery{DisplayName: "training"}},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockComp := compmock.NewComponentInterface()
				mockComp.Impl.Find = func(ctx context.Context, q domain.ComponentFindQuery) ([]domain.TrialComponent, error) {
					return []domain.TrialComponent{}, nil
				}

				e := echo.New()
				c, _ := httptestutil.Get(e, testcase.when.request)

				if err := handlers.FindComponentHandler(mockComp)(c); err != nil {
					t.Fatalf("response is not illegal. error = %v", err)
				}

				if !cmp.SliceEqWith(
					mockComp.Calls.Find,
					[]domain.ComponentFindQuery{testcase.then.query},
					domain.ComponentFindQuery.Equal,
				) {
					t.Errorf(
						"unmatch: params for ComponentInterface.Find:\n- actual:\n%+v\n- expected:\n%+v",
						mockComp.Calls.Find, testcase.then.query,
					)
				}
			})
		}
	})

	t.Run("(Bad Request) when status is unknown", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/components?status=paused")

		err := handlers.FindComponentHandler(mockComp)(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusBadRequest)
		}
	})
}

func TestAppendObservationsHandler(t *testing.T) {
	t.Run("it appends observations to the metric series", func(t *testing.T) {
		ts := try.To(rfctime.ParseRFC3339DateTime(
			"2024-04-01T12:00:30+00:00",
		)).OrFatal(t).Time()

		mockComp := compmock.NewComponentInterface()
		mockComp.Impl.AppendObservations = func(ctx context.Context, name, metric string, obs []domain.Observation) error {
			return nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/components/comp-cafe/observations",
			strings.NewReader(`{"metric": "train:loss", "observations": [{"timestamp": "2024-04-01T12:00:30+00:00", "value": 1.9211}]}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		if err := handlers.AppendObservationsHandler(mockComp)(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if respRec.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusNoContent)
		}

		if mockComp.Calls.AppendObservations.Times() != 1 {
			t.Fatalf("AppendObservations is called %d times", mockComp.Calls.AppendObservations.Times())
		}
		call := mockComp.Calls.AppendObservations[0]
		if call.ComponentName != "comp-cafe" || call.Metric != "train:loss" {
			t.Errorf("unexpected call: %+v", call)
		}
		expected := []domain.Observation{{Timestamp: ts, Value: 1.9211}}
		if !cmp.SliceEqWith(call.Observations, expected, domain.Observation.Equal) {
			t.Errorf(
				"observations: (actual, expected) = \n(%+v, \n%+v)",
				call.Observations, expected,
			)
		}
	})

	t.Run("(Bad Request) when metric name is empty", func(t *testing.T) {
		mockComp := compmock.NewComponentInterface()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/components/comp-cafe/observations",
			strings.NewReader(`{"observations": []}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("name")
		c.SetParamValues("comp-cafe")

		err := handlers.AppendObservationsHandler(mockComp)(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusBadRequest)
		}
	})
}
