package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
)

func (c *client) RegisterComponent(
	ctx context.Context, spec apicomponents.Spec,
) (apicomponents.Detail, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("components"), spec)
	if err != nil {
		return apicomponents.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apicomponents.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apicomponents.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("component %s cannot be registered", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apicomponents.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetComponent(ctx context.Context, name string) (apicomponents.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("components", name), nil)
	if err != nil {
		return apicomponents.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apicomponents.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apicomponents.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("component %s is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apicomponents.Detail{}, err
	}
	return detail, nil
}

func (c *client) FindComponent(
	ctx context.Context, query FindComponentParameter,
) ([]apicomponents.Detail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apipath("components"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range map[string]string{
		"experiment":  query.Experiment,
		"trial":       query.Trial,
		"name":        query.Name,
		"displayName": query.DisplayName,
		"status":      query.Status,
	} {
		if value != "" {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	details := make([]apicomponents.Detail, 0, 5)
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

func (c *client) LogParameters(
	ctx context.Context, componentName string, parameters map[string]apicomponents.ParamValue,
) error {
	req, err := c.newJsonRequest(
		ctx, http.MethodPut,
		c.apipath("components", componentName, "parameters"),
		apicomponents.LogParametersRequest{Parameters: parameters},
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot log parameters on component %s", componentName),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) LogInput(
	ctx context.Context, componentName string, artifact apicomponents.Artifact,
) error {
	return c.logArtifact(ctx, componentName, "inputs", artifact)
}

func (c *client) LogOutput(
	ctx context.Context, componentName string, artifact apicomponents.Artifact,
) error {
	return c.logArtifact(ctx, componentName, "outputs", artifact)
}

func (c *client) logArtifact(
	ctx context.Context, componentName string, side string, artifact apicomponents.Artifact,
) error {
	req, err := c.newJsonRequest(
		ctx, http.MethodPut, c.apipath("components", componentName, side), artifact,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot record %s of component %s", side, componentName),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) AppendObservations(
	ctx context.Context, componentName string, metric string, observations []apicomponents.Observation,
) error {
	req, err := c.newJsonRequest(
		ctx, http.MethodPost,
		c.apipath("components", componentName, "observations"),
		apicomponents.AppendObservationsRequest{
			Metric: metric, Observations: observations,
		},
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot append observations of %s on component %s", metric, componentName),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) AttachComponent(
	ctx context.Context, trialName string, componentName string,
) error {
	req, err := c.newJsonRequest(
		ctx, http.MethodPut,
		c.apipath("components", componentName, "attach"),
		apicomponents.AttachRequest{Trial: trialName},
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot attach component %s to trial %s", componentName, trialName),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) FinishComponent(
	ctx context.Context, componentName string, status string, endedAt time.Time,
) (apicomponents.Detail, error) {
	req, err := c.newJsonRequest(
		ctx, http.MethodPut,
		c.apipath("components", componentName, "finish"),
		apicomponents.FinishRequest{
			Status: status, EndedAt: rfctime.New(endedAt),
		},
	)
	if err != nil {
		return apicomponents.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apicomponents.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apicomponents.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("component %s cannot be finished as %s", componentName, status),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apicomponents.Detail{}, err
	}
	return detail, nil
}
