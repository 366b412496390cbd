package rest

import (
	"context"
	"fmt"
	"net/http"

	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
)

func (c *client) RegisterTrial(ctx context.Context, spec apitrials.Spec) (apitrials.Detail, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("trials"), spec)
	if err != nil {
		return apitrials.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apitrials.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apitrials.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("trial %s cannot be registered", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apitrials.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetTrial(ctx context.Context, name string) (apitrials.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("trials", name), nil)
	if err != nil {
		return apitrials.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apitrials.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apitrials.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("trial %s is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apitrials.Detail{}, err
	}
	return detail, nil
}

func (c *client) FindTrial(ctx context.Context, experiment string) ([]apitrials.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("trials"), nil)
	if err != nil {
		return nil, err
	}

	if experiment != "" {
		q := req.URL.Query()
		q.Add("experiment", experiment)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	details := make([]apitrials.Detail, 0, 5)
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
