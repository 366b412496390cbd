package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
	"github.com/trellis-ml/trellis/pkg/domain"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	trialdb "github.com/trellis-ml/trellis/pkg/domain/trial/db"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

func TrialRegisterHandler(dbtrial trialdb.TrialInterface, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()
		if !strings.HasPrefix(strings.ToLower(req.Header.Get("content-type")), "application/json") {
			return apierr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		spec := new(apitrials.Spec)
		if err := json.NewDecoder(req.Body).Decode(spec); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}
		if spec.Name == "" {
			return apierr.BadRequest(`"name" is required`, nil)
		}
		if spec.Experiment == "" {
			return apierr.BadRequest(`"experiment" is required`, nil)
		}

		trial := domain.TrialBody{
			Name:           spec.Name,
			ExperimentName: spec.Experiment,
			CreatedAt:      now(),
		}

		if err := dbtrial.Create(ctx, trial); err != nil {
			if errors.Is(err, domerr.ErrAlreadyExists) {
				return apierr.Conflict("trial name is taken", apierr.WithError(err))
			}
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		trials, err := dbtrial.Get(ctx, []string{spec.Name})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		registered, ok := trials[spec.Name]
		if !ok {
			return apierr.InternalServerError(errors.New("registered trial is not found"))
		}

		c.JSON(http.StatusOK, apitrials.ComposeDetail(registered))

		return nil
	}
}

func GetTrialHandler(dbtrial trialdb.TrialInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param("name")
		ctx := c.Request().Context()

		trials, err := dbtrial.Get(ctx, []string{name})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		trial, ok := trials[name]
		if !ok {
			return apierr.NotFound()
		}

		c.JSON(http.StatusOK, apitrials.ComposeDetail(trial))

		return nil
	}
}

func FindTrialHandler(dbtrial trialdb.TrialInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		trials, err := dbtrial.Find(ctx, c.QueryParam("experiment"))
		if err != nil {
			return apierr.InternalServerError(err)
		}

		c.JSON(http.StatusOK, slices.Map(trials, apitrials.ComposeDetail))

		return nil
	}
}
