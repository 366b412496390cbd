package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apistorage "github.com/trellis-ml/trellis/pkg/api/types/storage"
)

// StorageInfoHandler tells clients which bucket to stage datasets on.
func StorageInfoHandler(bucket string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.JSON(http.StatusOK, apistorage.Info{Bucket: bucket})
		return nil
	}
}
