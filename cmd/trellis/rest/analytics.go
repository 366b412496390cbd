package rest

import (
	"context"
	"fmt"
	"net/http"

	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
)

func (c *client) Query(
	ctx context.Context, query apianalytics.Query,
) (apianalytics.Table, error) {
	req, err := c.newJsonRequest(ctx, http.MethodPost, c.apipath("analytics"), query)
	if err != nil {
		return apianalytics.Table{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apianalytics.Table{}, err
	}
	defer resp.Body.Close()

	var table apianalytics.Table
	if err := unmarshalJsonResponse(
		resp, &table,
		MessageFor{
			Status4xx: "analytics query is rejected",
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apianalytics.Table{}, err
	}
	return table, nil
}
