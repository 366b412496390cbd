// Package analytics builds comparison tables over trial components.
//
// A table has one row per trial component and one column per requested
// parameter or metric statistic. It is computed from a read-only
// snapshot of the store; rows are independent.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/trellis-ml/trellis/pkg/domain"
)

// Stat is one statistic computed over a metric's observation sequence.
type Stat string

const (
	Min    Stat = "Min"
	Max    Stat = "Max"
	Avg    Stat = "Avg"
	StdDev Stat = "StdDev"
	Last   Stat = "Last"
	Count  Stat = "Count"
)

// Stats returns all statistics in column order.
func Stats() []Stat {
	return []Stat{Min, Max, Avg, StdDev, Last, Count}
}

// ColumnOf names the table column of a metric statistic,
// e.g. "validation:accuracy - Max".
func ColumnOf(metric string, s Stat) string {
	return metric + " - " + string(s)
}

type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

func AsSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case Ascending:
		return Ascending, true
	case Descending:
		return Descending, true
	case "":
		return Ascending, true
	default:
		return "", false
	}
}

// MetricSummary is the set of statistics over one metric series.
//
// A series with no observations summarizes to the zero value:
// Count = 0 and StdDev = 0 (and Last = 0) by convention, not an error.
// Callers must tolerate all-zero rows for components whose job has not
// flushed any observation yet.
type MetricSummary struct {
	Min    float64
	Max    float64
	Avg    float64
	StdDev float64
	Last   float64
	Count  int
}

func (ms MetricSummary) Equal(other MetricSummary) bool {
	return ms == other
}

// Stat picks one statistic from the summary.
func (ms MetricSummary) Stat(s Stat) float64 {
	switch s {
	case Min:
		return ms.Min
	case Max:
		return ms.Max
	case Avg:
		return ms.Avg
	case StdDev:
		return ms.StdDev
	case Last:
		return ms.Last
	case Count:
		return float64(ms.Count)
	default:
		return 0
	}
}

// Summarize computes statistics over observations in logged order.
func Summarize(obs []domain.Observation) MetricSummary {
	if len(obs) == 0 {
		return MetricSummary{}
	}

	min, max := obs[0].Value, obs[0].Value
	sum := 0.0
	for _, o := range obs {
		if o.Value < min {
			min = o.Value
		}
		if max < o.Value {
			max = o.Value
		}
		sum += o.Value
	}
	avg := sum / float64(len(obs))

	// population standard deviation; 0 for a single observation.
	varsum := 0.0
	for _, o := range obs {
		d := o.Value - avg
		varsum += d * d
	}
	stddev := math.Sqrt(varsum / float64(len(obs)))

	return MetricSummary{
		Min:    min,
		Max:    max,
		Avg:    avg,
		StdDev: stddev,
		Last:   obs[len(obs)-1].Value,
		Count:  len(obs),
	}
}

// Row is one trial component's line in a comparison table.
type Row struct {
	ComponentName string
	DisplayName   string

	// Parameters maps requested parameter names to their logged value.
	// A nil value means the parameter was never logged.
	Parameters map[string]*domain.ParamValue

	// Metrics maps requested metric names to their summaries.
	Metrics map[string]MetricSummary
}

// Table is a comparison across trial components.
type Table struct {
	MetricNames    []string
	ParameterNames []string
	Rows           []Row
}

// NewTable joins the requested parameters and metric statistics of the
// given components, one row each, in the given (store retrieval) order.
func NewTable(components []domain.TrialComponent, metricNames, parameterNames []string) Table {
	rows := make([]Row, 0, len(components))
	for _, c := range components {
		row := Row{
			ComponentName: c.Name,
			DisplayName:   c.DisplayName,
			Parameters:    map[string]*domain.ParamValue{},
			Metrics:       map[string]MetricSummary{},
		}
		for _, p := range parameterNames {
			if v, ok := c.Parameters[p]; ok {
				v := v
				row.Parameters[p] = &v
			} else {
				row.Parameters[p] = nil
			}
		}
		for _, m := range metricNames {
			row.Metrics[m] = Summarize(c.Metrics[m])
		}
		rows = append(rows, row)
	}

	return Table{
		MetricNames:    metricNames,
		ParameterNames: parameterNames,
		Rows:           rows,
	}
}

// Sort orders rows by the named column, which is either a metric
// statistic column (see ColumnOf) or a parameter name.
//
// The sort is stable: ties keep the underlying retrieval order.
// Rows missing the sort parameter always sort last.
// An unknown column leaves the table as-is.
func (t Table) Sort(sortBy string, order SortOrder) Table {
	if metric, stat, ok := t.metricColumn(sortBy); ok {
		sort.SliceStable(t.Rows, func(i, j int) bool {
			a := t.Rows[i].Metrics[metric].Stat(stat)
			b := t.Rows[j].Metrics[metric].Stat(stat)
			if order == Descending {
				return b < a
			}
			return a < b
		})
		return t
	}

	for _, p := range t.ParameterNames {
		if p != sortBy {
			continue
		}
		sort.SliceStable(t.Rows, func(i, j int) bool {
			return lessParam(t.Rows[i].Parameters[p], t.Rows[j].Parameters[p], order)
		})
		return t
	}

	return t
}

func (t Table) metricColumn(sortBy string) (string, Stat, bool) {
	for _, m := range t.MetricNames {
		for _, s := range Stats() {
			if ColumnOf(m, s) == sortBy {
				return m, s, true
			}
		}
	}
	return "", "", false
}

func lessParam(a, b *domain.ParamValue, order SortOrder) bool {
	// never-logged parameters sort last, whichever the order.
	if a == nil || b == nil {
		return a != nil && b == nil
	}

	if a.Number != nil && b.Number != nil {
		if order == Descending {
			return *b.Number < *a.Number
		}
		return *a.Number < *b.Number
	}

	av, bv := a.Render(), b.Render()
	if order == Descending {
		return strings.Compare(bv, av) < 0
	}
	return strings.Compare(av, bv) < 0
}
