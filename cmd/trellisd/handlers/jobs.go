package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/trellis-ml/trellis/pkg/api/types/errors"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	"github.com/trellis-ml/trellis/pkg/domain"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	"github.com/trellis-ml/trellis/pkg/plane/training"
)

// ImageResolver pins an image reference to its digest.
type ImageResolver func(ctx context.Context, imageRef string) (string, error)

// Observer follows a submitted job, detached from the request.
//
// Handlers fire it in its own goroutine with a background context, so
// metric extraction outlives the submitting request.
type Observer func(handle training.Handle, componentName string, rules []domain.MetricRule)

func JobSubmitHandler(
	trainer training.Trainer,
	resolve ImageResolver,
	observe Observer,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec, err := bindJson[apijobs.Spec](c)
		if err != nil {
			return err
		}

		submission := spec.ToSubmission(spec.Image)
		if err := submission.Validate(); err != nil {
			if errors.Is(err, domerr.ErrConflictingConfiguration) {
				return apierr.BadRequest(
					"spot.maxWaitSeconds needs spot.enabled", err,
				)
			}
			return apierr.BadRequest("invalid job spec", err)
		}

		image, err := resolve(ctx, spec.Image)
		if err != nil {
			return apierr.BadRequest("can not resolve the image to a digest", err)
		}
		submission.Image = image

		handle, err := trainer.Submit(ctx, submission)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		go observe(handle, spec.Component, submission.MetricRules)

		response := apijobs.ComposeHandle(handle, image)
		if spec.Wait {
			status, err := trainer.Await(ctx, handle)
			if err != nil {
				return apierr.InternalServerError(err)
			}
			response.Status = string(status)
		}

		c.JSON(http.StatusOK, response)

		return nil
	}
}

func JobSweepHandler(
	trainer training.Trainer,
	resolve ImageResolver,
	observe Observer,
	courtesy time.Duration,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req, err := bindJson[apijobs.SweepRequest](c)
		if err != nil {
			return err
		}
		if len(req.Jobs) == 0 {
			return apierr.BadRequest(`"jobs" should not be empty`, nil)
		}

		results := make([]apijobs.SweepResult, 0, len(req.Jobs))

		submissions := make([]training.Submission, 0, len(req.Jobs))
		components := map[string]string{}
		rules := map[string][]domain.MetricRule{}
		for _, spec := range req.Jobs {
			submission := spec.ToSubmission(spec.Image)
			if err := submission.Validate(); err != nil {
				results = append(results, apijobs.SweepResult{
					Name: spec.Name, Error: err.Error(),
				})
				continue
			}
			image, err := resolve(ctx, spec.Image)
			if err != nil {
				results = append(results, apijobs.SweepResult{
					Name: spec.Name, Error: err.Error(),
				})
				continue
			}
			submission.Image = image
			submissions = append(submissions, submission)
			components[submission.Name] = spec.Component
			rules[submission.Name] = submission.MetricRules
		}

		for dispatch := range training.SubmitAll(ctx, trainer, submissions, courtesy) {
			if dispatch.Err != nil {
				results = append(results, apijobs.SweepResult{
					Name:  dispatch.Submission.Name,
					Error: dispatch.Err.Error(),
				})
				continue
			}

			go observe(
				dispatch.Handle,
				components[dispatch.Submission.Name],
				rules[dispatch.Submission.Name],
			)

			handle := apijobs.ComposeHandle(dispatch.Handle, dispatch.Submission.Image)
			results = append(results, apijobs.SweepResult{
				Name:   dispatch.Submission.Name,
				Handle: &handle,
			})
		}

		c.JSON(http.StatusOK, results)

		return nil
	}
}
