package trials

import (
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

type Summary struct {
	Name       string          `json:"name"`
	Experiment string          `json:"experiment"`
	CreatedAt  rfctime.RFC3339 `json:"createdAt"`
}

func ComposeSummary(t domain.TrialBody) Summary {
	return Summary{
		Name:       t.Name,
		Experiment: t.ExperimentName,
		CreatedAt:  rfctime.New(t.CreatedAt),
	}
}

func (s Summary) Equal(o Summary) bool {
	return s.Name == o.Name &&
		s.Experiment == o.Experiment &&
		s.CreatedAt.Equal(o.CreatedAt)
}

type Detail struct {
	Summary

	// Components attached to the trial, in attachment order.
	Components []apicomponents.Summary `json:"components"`
}

func ComposeDetail(t domain.Trial) Detail {
	return Detail{
		Summary:    ComposeSummary(t.TrialBody),
		Components: slices.Map(t.Components, apicomponents.ComposeSummary),
	}
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqWith(d.Components, o.Components, apicomponents.Summary.Equal)
}

// Spec is the request body to register a trial.
type Spec struct {
	Name       string `json:"name"`
	Experiment string `json:"experiment"`
}

func (s Spec) Equal(o Spec) bool {
	return s == o
}
