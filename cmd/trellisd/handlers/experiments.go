package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
	"github.com/trellis-ml/trellis/pkg/domain"
	expdb "github.com/trellis-ml/trellis/pkg/domain/experiment/db"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

func ExperimentRegisterHandler(dbexp expdb.ExperimentInterface, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()
		if !strings.HasPrefix(strings.ToLower(req.Header.Get("content-type")), "application/json") {
			return apierr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		spec := new(apiexperiments.Spec)
		if err := json.NewDecoder(req.Body).Decode(spec); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}
		if spec.Name == "" {
			return apierr.BadRequest(`"name" is required`, nil)
		}

		experiment := domain.Experiment{
			Name:        spec.Name,
			Description: spec.Description,
			CreatedAt:   now(),
		}

		if err := dbexp.Create(ctx, experiment); err != nil {
			if errors.Is(err, domerr.ErrAlreadyExists) {
				return apierr.Conflict(
					"experiment name is taken",
					apierr.WithError(err),
					apierr.WithAdvice("the existing experiment is left as it is"),
				)
			}
			return apierr.InternalServerError(err)
		}

		experiments, err := dbexp.Get(ctx, []string{spec.Name})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		registered, ok := experiments[spec.Name]
		if !ok {
			return apierr.InternalServerError(
				errors.New("registered experiment is not found"),
			)
		}

		c.JSON(http.StatusOK, apiexperiments.ComposeDetail(registered))

		return nil
	}
}

func GetExperimentHandler(dbexp expdb.ExperimentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param("name")
		ctx := c.Request().Context()

		experiments, err := dbexp.Get(ctx, []string{name})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		experiment, ok := experiments[name]
		if !ok {
			return apierr.NotFound()
		}

		c.JSON(http.StatusOK, apiexperiments.ComposeDetail(experiment))

		return nil
	}
}

func FindExperimentHandler(dbexp expdb.ExperimentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		experiments, err := dbexp.Find(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		c.JSON(
			http.StatusOK,
			slices.Map(experiments, apiexperiments.ComposeDetail),
		)

		return nil
	}
}
