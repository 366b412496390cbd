package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/domain/analytics"
	compdb "github.com/trellis-ml/trellis/pkg/domain/component/db"
)

func AnalyticsQueryHandler(dbcomp compdb.ComponentInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		query, err := bindJson[apianalytics.Query](c)
		if err != nil {
			return err
		}

		order, ok := analytics.AsSortOrder(query.Order)
		if !ok {
			return apierr.BadRequest(
				`"order" should be "ascending" or "descending"`, nil,
			)
		}

		findQuery := domain.ComponentFindQuery{
			ExperimentName: query.Experiment,
			TrialName:      query.Trial,
			Name:           query.Component,
			DisplayName:    query.DisplayName,
		}
		if query.Status != "" {
			status, err := domain.AsComponentStatus(query.Status)
			if err != nil {
				return apierr.BadRequest(
					`"status" should be one of "created", "completed" or "failed"`,
					err,
				)
			}
			findQuery.Status = status
		}

		components, err := dbcomp.Find(ctx, findQuery)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		table := analytics.NewTable(components, query.Metrics, query.Parameters)
		if query.SortBy != "" {
			table = table.Sort(query.SortBy, order)
		}

		c.JSON(http.StatusOK, apianalytics.ComposeTable(table))

		return nil
	}
}
