package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	"github.com/trellis-ml/trellis/pkg/domain"
	compdb "github.com/trellis-ml/trellis/pkg/domain/component/db"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

func bindJson[T any](c echo.Context) (*T, error) {
	req := c.Request()
	if !strings.HasPrefix(strings.ToLower(req.Header.Get("content-type")), "application/json") {
		return nil, apierr.BadRequest(
			"unexpected content type. it should be application/json", nil,
		)
	}
	body := new(T)
	if err := json.NewDecoder(req.Body).Decode(body); err != nil {
		return nil, apierr.BadRequest("can not understand the requested json", err)
	}
	return body, nil
}

func ComponentRegisterHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec, err := bindJson[apicomponents.Spec](c)
		if err != nil {
			return err
		}
		if spec.Name == "" {
			return apierr.BadRequest(`"name" is required`, nil)
		}

		if err := dbcomp.Create(ctx, spec.ToDomain()); err != nil {
			if errors.Is(err, domerr.ErrAlreadyExists) {
				return apierr.Conflict("component name is taken", apierr.WithError(err))
			}
			return apierr.InternalServerError(err)
		}

		components, err := dbcomp.Get(ctx, []string{spec.Name})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		registered, ok := components[spec.Name]
		if !ok {
			return apierr.InternalServerError(errors.New("registered component is not found"))
		}

		c.JSON(http.StatusOK, apicomponents.ComposeDetail(registered))

		return nil
	}
}

func GetComponentHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param("name")
		ctx := c.Request().Context()

		components, err := dbcomp.Get(ctx, []string{name})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		component, ok := components[name]
		if !ok {
			return apierr.NotFound()
		}

		c.JSON(http.StatusOK, apicomponents.ComposeDetail(component))

		return nil
	}
}

func FindComponentHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		query := domain.ComponentFindQuery{
			ExperimentName: c.QueryParam("experiment"),
			TrialName:      c.QueryParam("trial"),
			Name:           c.QueryParam("name"),
			DisplayName:    c.QueryParam("displayName"),
		}
		if s := c.QueryParam("status"); s != "" {
			status, err := domain.AsComponentStatus(s)
			if err != nil {
				return apierr.BadRequest(
					`"status" should be one of "created", "completed" or "failed"`,
					err,
				)
			}
			query.Status = status
		}

		components, err := dbcomp.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		c.JSON(http.StatusOK, slices.Map(components, apicomponents.ComposeDetail))

		return nil
	}
}

func LogParametersHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		req, err := bindJson[apicomponents.LogParametersRequest](c)
		if err != nil {
			return err
		}
		for pname, v := range req.Parameters {
			if (v.Number == nil) == (v.String == nil) {
				return apierr.BadRequest(
					`parameter "`+pname+`" should have exactly one of "number" and "string"`,
					nil,
				)
			}
		}

		if err := dbcomp.LogParameters(ctx, name, req.ToDomain()); err != nil {
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		c.Response().WriteHeader(http.StatusNoContent)

		return nil
	}
}

// LogArtifactHandler records an input or output artifact.
//
// Pass ComponentInterface.LogInput or .LogOutput as record.
func LogArtifactHandler(
	record func(ctx context.Context, componentName string, a domain.Artifact) error,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		req, err := bindJson[apicomponents.Artifact](c)
		if err != nil {
			return err
		}
		if req.Name == "" {
			return apierr.BadRequest(`"name" is required`, nil)
		}

		if err := record(ctx, name, req.ToDomain()); err != nil {
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		c.Response().WriteHeader(http.StatusNoContent)

		return nil
	}
}

func AppendObservationsHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		req, err := bindJson[apicomponents.AppendObservationsRequest](c)
		if err != nil {
			return err
		}
		if req.Metric == "" {
			return apierr.BadRequest(`"metric" is required`, nil)
		}

		observations := slices.Map(req.Observations, apicomponents.Observation.ToDomain)
		if err := dbcomp.AppendObservations(ctx, name, req.Metric, observations); err != nil {
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		c.Response().WriteHeader(http.StatusNoContent)

		return nil
	}
}

func AttachComponentHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		req, err := bindJson[apicomponents.AttachRequest](c)
		if err != nil {
			return err
		}
		if req.Trial == "" {
			return apierr.BadRequest(`"trial" is required`, nil)
		}

		if err := dbcomp.Attach(ctx, req.Trial, name); err != nil {
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		c.Response().WriteHeader(http.StatusNoContent)

		return nil
	}
}

func FinishComponentHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		req, err := bindJson[apicomponents.FinishRequest](c)
		if err != nil {
			return err
		}
		status, err := domain.AsComponentStatus(req.Status)
		if err != nil {
			return apierr.BadRequest(
				`"status" should be "completed" or "failed"`, err,
			)
		}

		if err := dbcomp.Finish(ctx, name, status, req.EndedAt.Time()); err != nil {
			if errors.Is(err, domerr.ErrMissing) {
				return apierr.NotFound()
			}
			if errors.Is(err, domerr.ErrInvalidStatusTransition) {
				return apierr.Conflict("prohibited status transition", apierr.WithError(err))
			}
			return apierr.InternalServerError(err)
		}

		components, err := dbcomp.Get(ctx, []string{name})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		component, ok := components[name]
		if !ok {
			return apierr.NotFound()
		}

		c.JSON(http.StatusOK, apicomponents.ComposeDetail(component))

		return nil
	}
}
