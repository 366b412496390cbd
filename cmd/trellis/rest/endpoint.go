package rest

import (
	"context"
	"fmt"
	"net/http"

	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
)

func (c *client) DeployEndpoint(
	ctx context.Context, spec apiendpoints.Spec,
) (apiendpoints.Handle, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("endpoints"), spec)
	if err != nil {
		return apiendpoints.Handle{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiendpoints.Handle{}, err
	}
	defer resp.Body.Close()

	var handle apiendpoints.Handle
	if err := unmarshalJsonResponse(
		resp, &handle,
		MessageFor{
			Status4xx: fmt.Sprintf("endpoint %s cannot be deployed", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiendpoints.Handle{}, err
	}
	return handle, nil
}

func (c *client) DeleteEndpoint(ctx context.Context, name string, deleteConfig bool) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.apipath("endpoints", name), nil)
	if err != nil {
		return err
	}

	if deleteConfig {
		q := req.URL.Query()
		q.Add("deleteConfig", "true")
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("endpoint %s cannot be deleted", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}
