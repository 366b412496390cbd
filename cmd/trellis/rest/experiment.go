package rest

import (
	"context"
	"fmt"
	"net/http"

	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
)

func (c *client) RegisterExperiment(
	ctx context.Context, spec apiexperiments.Spec,
) (apiexperiments.Detail, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("experiments"), spec)
	if err != nil {
		return apiexperiments.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiexperiments.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apiexperiments.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("experiment %s cannot be registered", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiexperiments.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetExperiment(ctx context.Context, name string) (apiexperiments.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("experiments", name), nil)
	if err != nil {
		return apiexperiments.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiexperiments.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apiexperiments.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("experiment %s is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiexperiments.Detail{}, err
	}
	return detail, nil
}

func (c *client) FindExperiment(ctx context.Context) ([]apiexperiments.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("experiments"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	details := make([]apiexperiments.Detail, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &details,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return details, nil
}
