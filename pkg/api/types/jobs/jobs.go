package jobs

import (
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/plane"
	"github.com/trellis-ml/trellis/pkg/plane/training"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

// Instance sizes the machine a job or endpoint runs on.
type Instance struct {
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
	GPU    int64  `json:"gpu,omitempty"`
}

func (i Instance) Equal(o Instance) bool {
	return i == o
}

func (i Instance) ToPlane() plane.InstanceSpec {
	return plane.InstanceSpec{CPU: i.CPU, Memory: i.Memory, GPU: i.GPU}
}

type Spot struct {
	Enabled        bool  `json:"enabled,omitempty"`
	MaxWaitSeconds int64 `json:"maxWaitSeconds,omitempty"`
}

func (s Spot) Equal(o Spot) bool {
	return s == o
}

type MetricRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

func (r MetricRule) Equal(o MetricRule) bool {
	return r == o
}

func (r MetricRule) ToDomain() domain.MetricRule {
	return domain.MetricRule{Name: r.Name, Pattern: r.Pattern}
}

// Spec is the request body to launch one training job.
type Spec struct {
	Name  string `json:"name"`
	Image string `json:"image"`

	Hyperparameters map[string]string `json:"hyperparameters,omitempty"`
	InputChannels   map[string]string `json:"inputChannels,omitempty"`

	Instance Instance `json:"instance,omitempty"`
	Spot     Spot     `json:"spot,omitempty"`

	Metrics []MetricRule `json:"metrics,omitempty"`

	// Wait makes the submission block until the job reaches a
	// terminal status. By default submission returns as soon as the
	// job is created.
	Wait bool `json:"wait,omitempty"`

	Experiment string `json:"experiment"`
	Trial      string `json:"trial"`
	Component  string `json:"component"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		s.Image == o.Image &&
		cmp.MapEq(s.Hyperparameters, o.Hyperparameters) &&
		cmp.MapEq(s.InputChannels, o.InputChannels) &&
		s.Instance.Equal(o.Instance) &&
		s.Spot.Equal(o.Spot) &&
		cmp.SliceEqWith(s.Metrics, o.Metrics, MetricRule.Equal) &&
		s.Wait == o.Wait &&
		s.Experiment == o.Experiment &&
		s.Trial == o.Trial &&
		s.Component == o.Component
}

// ToSubmission renders the spec for the training plane.
//
// image is the digest-resolved reference to run, which may differ from
// the reference the spec was written with.
func (s Spec) ToSubmission(image string) training.Submission {
	return training.Submission{
		Name:            s.Name,
		Image:           image,
		Hyperparameters: s.Hyperparameters,
		InputChannels:   s.InputChannels,
		Instance:        s.Instance.ToPlane(),
		Spot: training.Spot{
			Enabled:        s.Spot.Enabled,
			MaxWaitSeconds: s.Spot.MaxWaitSeconds,
		},
		MetricRules:    slices.Map(s.Metrics, MetricRule.ToDomain),
		ExperimentName: s.Experiment,
		TrialName:      s.Trial,
		ComponentName:  s.Component,
	}
}

// Handle identifies a submitted job.
type Handle struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	// Image actually submitted, pinned to its digest.
	Image string `json:"image"`

	// Status is the job's terminal status. Set only when the
	// submission waited for the job to finish.
	Status string `json:"status,omitempty"`
}

func (h Handle) Equal(o Handle) bool {
	return h == o
}

func ComposeHandle(h training.Handle, image string) Handle {
	return Handle{Name: h.Name, Namespace: h.Namespace, Image: image}
}

// SweepRequest launches several jobs in one request.
type SweepRequest struct {
	Jobs []Spec `json:"jobs"`
}

func (r SweepRequest) Equal(o SweepRequest) bool {
	return cmp.SliceEqWith(r.Jobs, o.Jobs, Spec.Equal)
}

// SweepResult reports the outcome of one sweep dispatch.
//
// Either Handle or Error is set.
type SweepResult struct {
	Name   string  `json:"name"`
	Handle *Handle `json:"handle,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func (r SweepResult) Equal(o SweepResult) bool {
	handleEq := (r.Handle == nil && o.Handle == nil) ||
		(r.Handle != nil && o.Handle != nil && r.Handle.Equal(*o.Handle))
	return r.Name == o.Name && handleEq && r.Error == o.Error
}
