package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
)

// Middleware rejects requests without a valid bearer token.
//
// Verified claims are stored in the echo context under "claims".
func Middleware(a *Authority) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return apierr.Unauthorized(
					"set a bearer token in the Authorization header",
					fmt.Errorf("no bearer token"),
				)
			}

			claims, err := a.Verify(token)
			if err != nil {
				return apierr.Unauthorized("get a new token", err)
			}

			c.Set("claims", claims)
			return next(c)
		}
	}
}
