package analytics

import (
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	"github.com/trellis-ml/trellis/pkg/domain/analytics"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

// Query is the request body of an analytics query.
//
// The table starts from all trial components matching the filter
// fields; every set field must match (logical AND), empty fields
// match anything.
type Query struct {
	// Experiment restricts the table to one experiment's components.
	// Empty means all experiments.
	Experiment string `json:"experiment,omitempty"`

	// Trial restricts the table to components attached to one trial.
	Trial string `json:"trial,omitempty"`

	// Component restricts the table to the component with this name.
	Component string `json:"component,omitempty"`

	// DisplayName restricts the table to components with this display
	// name.
	DisplayName string `json:"displayName,omitempty"`

	// Status restricts the table to components in this status:
	// "created", "completed" or "failed".
	Status string `json:"status,omitempty"`

	Metrics    []string `json:"metrics"`
	Parameters []string `json:"parameters"`

	// SortBy is a parameter name or a metric statistic column,
	// e.g. "validation:accuracy - Max". Empty keeps retrieval order.
	SortBy string `json:"sortBy,omitempty"`

	// Order is "ascending" (default) or "descending".
	Order string `json:"order,omitempty"`
}

func (q Query) Equal(o Query) bool {
	return q.Experiment == o.Experiment &&
		q.Trial == o.Trial &&
		q.Component == o.Component &&
		q.DisplayName == o.DisplayName &&
		q.Status == o.Status &&
		cmp.SliceEq(q.Metrics, o.Metrics) &&
		cmp.SliceEq(q.Parameters, o.Parameters) &&
		q.SortBy == o.SortBy &&
		q.Order == o.Order
}

type MetricSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"stddev"`
	Last   float64 `json:"last"`
	Count  int     `json:"count"`
}

func (ms MetricSummary) Equal(o MetricSummary) bool {
	return ms == o
}

func ComposeMetricSummary(ms analytics.MetricSummary) MetricSummary {
	return MetricSummary{
		Min:    ms.Min,
		Max:    ms.Max,
		Avg:    ms.Avg,
		StdDev: ms.StdDev,
		Last:   ms.Last,
		Count:  ms.Count,
	}
}

type Row struct {
	Component   string `json:"component"`
	DisplayName string `json:"displayName"`

	// Parameters maps requested parameter names to their value;
	// null when the component never logged the parameter.
	Parameters map[string]*apicomponents.ParamValue `json:"parameters"`

	Metrics map[string]MetricSummary `json:"metrics"`
}

func ComposeRow(r analytics.Row) Row {
	params := map[string]*apicomponents.ParamValue{}
	for name, v := range r.Parameters {
		if v == nil {
			params[name] = nil
			continue
		}
		p := apicomponents.ComposeParamValue(*v)
		params[name] = &p
	}
	metrics := map[string]MetricSummary{}
	for name, ms := range r.Metrics {
		metrics[name] = ComposeMetricSummary(ms)
	}
	return Row{
		Component:   r.ComponentName,
		DisplayName: r.DisplayName,
		Parameters:  params,
		Metrics:     metrics,
	}
}

func (r Row) Equal(o Row) bool {
	return r.Component == o.Component &&
		r.DisplayName == o.DisplayName &&
		cmp.MapEqWith(r.Parameters, o.Parameters, (*apicomponents.ParamValue).Equal) &&
		cmp.MapEqWith(r.Metrics, o.Metrics, MetricSummary.Equal)
}

type Table struct {
	Metrics    []string `json:"metrics"`
	Parameters []string `json:"parameters"`
	Rows       []Row    `json:"rows"`
}

func ComposeTable(t analytics.Table) Table {
	return Table{
		Metrics:    t.MetricNames,
		Parameters: t.ParameterNames,
		Rows:       slices.Map(t.Rows, ComposeRow),
	}
}

func (t Table) Equal(o Table) bool {
	return cmp.SliceEq(t.Metrics, o.Metrics) &&
		cmp.SliceEq(t.Parameters, o.Parameters) &&
		cmp.SliceEqWith(t.Rows, o.Rows, Row.Equal)
}
