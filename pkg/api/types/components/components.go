package components

import (
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

// ParamValue carries one logged parameter value.
//
// Exactly one of Number and String is set.
type ParamValue struct {
	Number *float64 `json:"number,omitempty"`
	String *string  `json:"string,omitempty"`
}

func (pv *ParamValue) Equal(o *ParamValue) bool {
	if pv == nil || o == nil {
		return (pv == nil) && (o == nil)
	}
	return cmp.PEqEq(pv.Number, o.Number) && cmp.PEqEq(pv.String, o.String)
}

func ComposeParamValue(v domain.ParamValue) ParamValue {
	return ParamValue{Number: v.Number, String: v.String}
}

func (pv ParamValue) ToDomain() domain.ParamValue {
	return domain.ParamValue{Number: pv.Number, String: pv.String}
}

type Artifact struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	MediaType string `json:"mediaType,omitempty"`
}

func (a Artifact) Equal(o Artifact) bool {
	return a == o
}

func ComposeArtifact(a domain.Artifact) Artifact {
	return Artifact{Name: a.Name, URI: a.URI, MediaType: a.MediaType}
}

func (a Artifact) ToDomain() domain.Artifact {
	return domain.Artifact{Name: a.Name, URI: a.URI, MediaType: a.MediaType}
}

type Observation struct {
	Timestamp rfctime.RFC3339 `json:"timestamp"`
	Value     float64         `json:"value"`
}

func (o Observation) Equal(other Observation) bool {
	return o.Timestamp.Equal(other.Timestamp) && o.Value == other.Value
}

func ComposeObservation(o domain.Observation) Observation {
	return Observation{Timestamp: rfctime.New(o.Timestamp), Value: o.Value}
}

func (o Observation) ToDomain() domain.Observation {
	return domain.Observation{Timestamp: o.Timestamp.Time(), Value: o.Value}
}

type Summary struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Status      string           `json:"status"`
	StartedAt   rfctime.RFC3339  `json:"startedAt"`
	EndedAt     *rfctime.RFC3339 `json:"endedAt,omitempty"`
}

func ComposeSummary(c domain.ComponentBody) Summary {
	var endedAt *rfctime.RFC3339
	if c.EndedAt != nil {
		t := rfctime.New(*c.EndedAt)
		endedAt = &t
	}
	return Summary{
		Name:        c.Name,
		DisplayName: c.DisplayName,
		Status:      string(c.Status),
		StartedAt:   rfctime.New(c.StartedAt),
		EndedAt:     endedAt,
	}
}

func (s Summary) Equal(o Summary) bool {
	endEq := (s.EndedAt == nil && o.EndedAt == nil) ||
		(s.EndedAt != nil && o.EndedAt != nil && s.EndedAt.Equal(*o.EndedAt))

	return s.Name == o.Name &&
		s.DisplayName == o.DisplayName &&
		s.Status == o.Status &&
		s.StartedAt.Equal(o.StartedAt) &&
		endEq
}

type Detail struct {
	Summary
	Parameters map[string]ParamValue    `json:"parameters"`
	Inputs     []Artifact               `json:"inputs"`
	Outputs    []Artifact               `json:"outputs"`
	Metrics    map[string][]Observation `json:"metrics"`
}

func ComposeDetail(c domain.TrialComponent) Detail {
	params := map[string]ParamValue{}
	for name, v := range c.Parameters {
		params[name] = ComposeParamValue(v)
	}
	metrics := map[string][]Observation{}
	for name, obs := range c.Metrics {
		metrics[name] = slices.Map(obs, ComposeObservation)
	}
	return Detail{
		Summary:    ComposeSummary(c.ComponentBody),
		Parameters: params,
		Inputs:     slices.Map(c.Inputs, ComposeArtifact),
		Outputs:    slices.Map(c.Outputs, ComposeArtifact),
		Metrics:    metrics,
	}
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.MapEqWith(d.Parameters, o.Parameters, func(a, b ParamValue) bool {
			return a.Equal(&b)
		}) &&
		cmp.SliceContentEqWith(d.Inputs, o.Inputs, Artifact.Equal) &&
		cmp.SliceContentEqWith(d.Outputs, o.Outputs, Artifact.Equal) &&
		cmp.MapEqWith(d.Metrics, o.Metrics, func(a, b []Observation) bool {
			return cmp.SliceEqWith(a, b, Observation.Equal)
		})
}

// Spec is the request body to register a trial component.
type Spec struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	StartedAt   rfctime.RFC3339 `json:"startedAt"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		s.DisplayName == o.DisplayName &&
		s.StartedAt.Equal(o.StartedAt)
}

func (s Spec) ToDomain() domain.ComponentBody {
	return domain.ComponentBody{
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Status:      domain.Created,
		StartedAt:   s.StartedAt.Time(),
	}
}

// LogParametersRequest merges parameters into a component.
// Re-logged names take the new value.
type LogParametersRequest struct {
	Parameters map[string]ParamValue `json:"parameters"`
}

func (r LogParametersRequest) ToDomain() map[string]domain.ParamValue {
	params := map[string]domain.ParamValue{}
	for name, v := range r.Parameters {
		params[name] = v.ToDomain()
	}
	return params
}

// AppendObservationsRequest appends to one metric series.
type AppendObservationsRequest struct {
	Metric       string        `json:"metric"`
	Observations []Observation `json:"observations"`
}

func (r AppendObservationsRequest) Equal(o AppendObservationsRequest) bool {
	return r.Metric == o.Metric &&
		cmp.SliceEqWith(r.Observations, o.Observations, Observation.Equal)
}

// AttachRequest attaches a component to a trial.
type AttachRequest struct {
	Trial string `json:"trial"`
}

// FinishRequest finalizes a component.
//
// Status is "completed" or "failed".
type FinishRequest struct {
	Status  string          `json:"status"`
	EndedAt rfctime.RFC3339 `json:"endedAt"`
}

func (r FinishRequest) Equal(o FinishRequest) bool {
	return r.Status == o.Status && r.EndedAt.Equal(o.EndedAt)
}
