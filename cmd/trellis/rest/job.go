package rest

import (
	"context"
	"fmt"
	"net/http"

	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
)

func (c *client) SubmitJob(ctx context.Context, spec apijobs.Spec) (apijobs.Handle, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("jobs"), spec)
	if err != nil {
		return apijobs.Handle{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apijobs.Handle{}, err
	}
	defer resp.Body.Close()

	var handle apijobs.Handle
	if err := unmarshalJsonResponse(
		resp, &handle,
		MessageFor{
			Status4xx: fmt.Sprintf("job %s cannot be submitted", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apijobs.Handle{}, err
	}
	return handle, nil
}

func (c *client) SweepJobs(ctx context.Context, specs []apijobs.Spec) ([]apijobs.SweepResult, error) {
	req, err := c.newJsonRequest(
		ctx, http.MethodPost, c.apipath("jobs", "sweep"),
		apijobs.SweepRequest{Jobs: specs},
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	results := make([]apijobs.SweepResult, 0, len(specs))
	if err := unmarshalJsonResponse(
		resp, &results,
		MessageFor{
			Status4xx: "sweep cannot be submitted",
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return results, nil
}
