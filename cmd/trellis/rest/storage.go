package rest

import (
	"context"
	"fmt"
	"net/http"

	apistorage "github.com/trellis-ml/trellis/pkg/api/types/storage"
)

func (c *client) StorageInfo(ctx context.Context) (apistorage.Info, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("storage"), nil)
	if err != nil {
		return apistorage.Info{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apistorage.Info{}, err
	}
	defer resp.Body.Close()

	var info apistorage.Info
	if err := unmarshalJsonResponse(
		resp, &info,
		MessageFor{
			Status4xx: "cannot read storage information",
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apistorage.Info{}, err
	}
	return info, nil
}
