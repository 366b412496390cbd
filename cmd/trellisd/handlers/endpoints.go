package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	"github.com/trellis-ml/trellis/pkg/plane"
	"github.com/trellis-ml/trellis/pkg/plane/endpoint"
)

func EndpointDeployHandler(deployer endpoint.Deployer, resolve ImageResolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec, err := bindJson[apiendpoints.Spec](c)
		if err != nil {
			return err
		}
		if spec.Name == "" {
			return apierr.BadRequest(`"name" is required`, nil)
		}
		if spec.Image == "" {
			return apierr.BadRequest(`"image" is required`, nil)
		}

		image, err := resolve(ctx, spec.Image)
		if err != nil {
			return apierr.BadRequest("can not resolve the image to a digest", err)
		}
		model := spec.ToModel()
		model.Image = image

		handle, err := deployer.Deploy(ctx, model, spec.Instance.ToPlane())
		if err != nil {
			if errors.Is(err, plane.ErrConflict) {
				return apierr.Conflict("endpoint name is taken", apierr.WithError(err))
			}
			return apierr.InternalServerError(err)
		}

		c.JSON(http.StatusOK, apiendpoints.ComposeHandle(handle))

		return nil
	}
}

func EndpointDeleteHandler(deployer endpoint.Deployer) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := c.Param("name")

		deleteConfig := false
		if q := c.QueryParam("deleteConfig"); q != "" {
			b, err := strconv.ParseBool(q)
			if err != nil {
				return apierr.BadRequest(`"deleteConfig" should be a boolean`, err)
			}
			deleteConfig = b
		}

		if err := deployer.Delete(ctx, name, deleteConfig); err != nil {
			if errors.Is(err, plane.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		c.Response().WriteHeader(http.StatusNoContent)

		return nil
	}
}
