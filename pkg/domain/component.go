package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trellis-ml/trellis/pkg/utils/cmp"
)

type ComponentStatus string

const (
	// The component has been created and may still receive logs.
	Created ComponentStatus = "created"

	// The component was finalized without error.
	Completed ComponentStatus = "completed"

	// The component was finalized with an error.
	Failed ComponentStatus = "failed"
)

func (cs ComponentStatus) String() string {
	return string(cs)
}

// Terminal reports whether the status accepts no further transition.
func (cs ComponentStatus) Terminal() bool {
	switch cs {
	case Completed, Failed:
		return true
	default:
		return false
	}
}

func AsComponentStatus(status string) (ComponentStatus, error) {
	switch status {
	case string(Created):
		return Created, nil
	case string(Completed):
		return Completed, nil
	case string(Failed):
		return Failed, nil
	default:
		return "", fmt.Errorf("'%s' is not ComponentStatus", status)
	}
}

// ParamValue is a scalar logged as a trial component parameter.
//
// Exactly one of Number and String is set.
type ParamValue struct {
	Number *float64
	String *string
}

func NumberParam(v float64) ParamValue {
	return ParamValue{Number: &v}
}

func StringParam(v string) ParamValue {
	return ParamValue{String: &v}
}

func (pv ParamValue) Equal(other ParamValue) bool {
	return cmp.PEqEq(pv.Number, other.Number) &&
		cmp.PEqEq(pv.String, other.String)
}

// Render returns the value as it appears in analytics tables:
// numbers bare, strings double-quoted.
func (pv ParamValue) Render() string {
	if pv.String != nil {
		return strconv.Quote(*pv.String)
	}
	if pv.Number != nil {
		return strconv.FormatFloat(*pv.Number, 'g', -1, 64)
	}
	return ""
}

// Artifact is a reference to an input or output of a trial component.
type Artifact struct {
	Name      string
	URI       string
	MediaType string
}

func (a Artifact) Equal(other Artifact) bool {
	return a == other
}

// Observation is one extracted metric value.
type Observation struct {
	Timestamp time.Time
	Value     float64
}

func (o Observation) Equal(other Observation) bool {
	return o.Timestamp.Equal(other.Timestamp) && o.Value == other.Value
}

// ComponentBody is the core part of a trial component.
type ComponentBody struct {
	// Name is unique across all trial components.
	Name string

	DisplayName string

	Status ComponentStatus

	StartedAt time.Time

	// EndedAt is nil until the component is finalized.
	EndedAt *time.Time
}

func (cb ComponentBody) Equal(other ComponentBody) bool {
	endEq := (cb.EndedAt == nil && other.EndedAt == nil) ||
		(cb.EndedAt != nil && other.EndedAt != nil && cb.EndedAt.Equal(*other.EndedAt))

	return cb.Name == other.Name &&
		cb.DisplayName == other.DisplayName &&
		cb.Status == other.Status &&
		cb.StartedAt.Equal(other.StartedAt) &&
		endEq
}

// TrialComponent is a unit of logged parameters, artifacts and metrics,
// attachable to one or more trials.
//
// Parameters and metric series are append-only once logged.
type TrialComponent struct {
	ComponentBody

	Parameters map[string]ParamValue

	Inputs  []Artifact
	Outputs []Artifact

	// Metrics maps a metric name to its observations in logged order.
	Metrics map[string][]Observation
}

func (tc TrialComponent) Equal(other TrialComponent) bool {
	return tc.ComponentBody.Equal(other.ComponentBody) &&
		cmp.MapEqWith(tc.Parameters, other.Parameters, ParamValue.Equal) &&
		cmp.SliceContentEqWith(tc.Inputs, other.Inputs, Artifact.Equal) &&
		cmp.SliceContentEqWith(tc.Outputs, other.Outputs, Artifact.Equal) &&
		cmp.MapEqWith(
			tc.Metrics, other.Metrics,
			func(a, b []Observation) bool {
				return cmp.SliceEqWith(a, b, Observation.Equal)
			},
		)
}

// ComponentFindQuery is the parameter to search trial components.
//
// Set fields are field-equality predicates; all set fields must match
// (logical AND). Zero-value fields match anything.
type ComponentFindQuery struct {
	ExperimentName string
	TrialName      string
	Name           string
	DisplayName    string
	Status         ComponentStatus
}

func (q ComponentFindQuery) Equal(other ComponentFindQuery) bool {
	return q == other
}
