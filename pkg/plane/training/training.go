// Package training submits training jobs to the cluster and observes
// their logs for metric extraction.
package training

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/trellis-ml/trellis/pkg/domain"
	compdb "github.com/trellis-ml/trellis/pkg/domain/component/db"
	domerr "github.com/trellis-ml/trellis/pkg/domain/errors"
	"github.com/trellis-ml/trellis/pkg/metrics"
	"github.com/trellis-ml/trellis/pkg/plane"
	"github.com/trellis-ml/trellis/pkg/plane/k8s"
	"github.com/trellis-ml/trellis/pkg/utils/pointer"
	"github.com/trellis-ml/trellis/pkg/utils/retry"
)

const (
	// container running the user's training image.
	TrainerContainer = "trainer"

	LabelExperiment = "trellis/experiment"
	LabelTrial      = "trellis/trial"
	LabelComponent  = "trellis/component"

	// nodes dedicated to reclaimable capacity carry this label and
	// taint.
	spotNodeLabel = "trellis/spot"
)

// Spot requests reclaimable capacity for a job.
//
// MaxWaitSeconds bounds how long the job may stay scheduled; it may be
// set only when Enabled is.
type Spot struct {
	Enabled        bool
	MaxWaitSeconds int64
}

// Submission is everything needed to launch one training job.
type Submission struct {
	// Name of the k8s job. Unique in the namespace.
	Name string

	// Image is the (digest-resolved) training image reference.
	Image string

	// Hyperparameters are passed as container args, --key=value,
	// sorted by key.
	Hyperparameters map[string]string

	// InputChannels are passed as env vars TRELLIS_CHANNEL_<NAME>,
	// valued with object-storage URIs.
	InputChannels map[string]string

	Instance plane.InstanceSpec
	Spot     Spot

	// MetricRules to apply to the job's log stream.
	MetricRules []domain.MetricRule

	// Tracking context the job reports into.
	ExperimentName string
	TrialName      string
	ComponentName  string
}

// Validate checks the submission before any remote call.
func (s Submission) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("submission without job name")
	}
	if s.Image == "" {
		return fmt.Errorf("submission %s: no image", s.Name)
	}
	if !s.Spot.Enabled && s.Spot.MaxWaitSeconds != 0 {
		return fmt.Errorf(
			"%w: max wait is set but spot is not enabled",
			domerr.ErrConflictingConfiguration,
		)
	}
	for _, r := range s.MetricRules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Build renders the submission as a k8s Job manifest.
func (s Submission) Build(namespace string) (*kubebatch.Job, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(s.Hyperparameters))
	for key, value := range s.Hyperparameters {
		args = append(args, fmt.Sprintf("--%s=%s", key, value))
	}
	sort.Strings(args)

	envs := make([]kubecore.EnvVar, 0, len(s.InputChannels))
	for name, uri := range s.InputChannels {
		envs = append(envs, kubecore.EnvVar{
			Name:  fmt.Sprintf("TRELLIS_CHANNEL_%s", name),
			Value: uri,
		})
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i].Name < envs[j].Name })

	resources, err := s.Instance.ResourceList()
	if err != nil {
		return nil, fmt.Errorf("submission %s: %w", s.Name, err)
	}

	labels := map[string]string{
		LabelExperiment: s.ExperimentName,
		LabelTrial:      s.TrialName,
		LabelComponent:  s.ComponentName,
	}

	spec := kubecore.PodSpec{
		RestartPolicy: kubecore.RestartPolicyNever,
		Containers: []kubecore.Container{
			{
				Name:  TrainerContainer,
				Image: s.Image,
				Args:  args,
				Env:   envs,
				Resources: kubecore.ResourceRequirements{
					Requests: resources,
					Limits:   resources,
				},
			},
		},
	}

	var activeDeadline *int64
	if s.Spot.Enabled {
		spec.NodeSelector = map[string]string{spotNodeLabel: "true"}
		spec.Tolerations = []kubecore.Toleration{
			{
				Key:      spotNodeLabel,
				Operator: kubecore.TolerationOpEqual,
				Value:    "true",
				Effect:   kubecore.TaintEffectNoSchedule,
			},
		}
		if s.Spot.MaxWaitSeconds != 0 {
			activeDeadline = pointer.Ref(s.Spot.MaxWaitSeconds)
		}
	}

	return &kubebatch.Job{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      s.Name,
			Namespace: namespace,
			Labels:    labels,
		},
		Spec: kubebatch.JobSpec{
			BackoffLimit:          pointer.Ref(int32(0)),
			ActiveDeadlineSeconds: activeDeadline,
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{Labels: labels},
				Spec:       spec,
			},
		},
	}, nil
}

// Handle identifies a submitted job.
type Handle struct {
	Name      string
	Namespace string
}

func (h Handle) Equal(other Handle) bool {
	return h == other
}

// Trainer submits training jobs and records their metrics.
type Trainer interface {
	// Submit creates the job on the cluster.
	//
	// It returns as soon as the job resource exists; the job's
	// progress is observed separately.
	Submit(ctx context.Context, submission Submission) (Handle, error)

	// Observe follows the job's log stream, extracts metrics with the
	// submission's rules, and appends observations to the component.
	//
	// It blocks until the stream ends or ctx is canceled.
	Observe(ctx context.Context, handle Handle, componentName string, rules []domain.MetricRule) error

	// Await blocks until the job reaches a terminal status, succeeded
	// or failed, and returns it.
	Await(ctx context.Context, handle Handle) (k8s.JobStatus, error)
}

type trainer struct {
	cluster    k8s.Cluster
	components compdb.ComponentInterface
	backoff    func() retry.Backoff
	now        func() time.Time
}

type Option func(*trainer) *trainer

// WithBackoff replaces the polling backoff used against the cluster.
func WithBackoff(b func() retry.Backoff) Option {
	return func(t *trainer) *trainer {
		t.backoff = b
		return t
	}
}

// WithClock replaces the wall clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(t *trainer) *trainer {
		t.now = now
		return t
	}
}

func New(cluster k8s.Cluster, components compdb.ComponentInterface, options ...Option) Trainer {
	t := &trainer{
		cluster:    cluster,
		components: components,
		backoff:    func() retry.Backoff { return retry.StaticBackoff(3 * time.Second) },
		now:        time.Now,
	}
	for _, opt := range options {
		t = opt(t)
	}
	return t
}

func (t *trainer) Submit(ctx context.Context, submission Submission) (Handle, error) {
	manifest, err := submission.Build(t.cluster.Namespace())
	if err != nil {
		return Handle{}, err
	}

	result := <-t.cluster.NewJob(ctx, t.backoff(), manifest)
	if result.Err != nil {
		return Handle{}, result.Err
	}

	return Handle{
		Name:      result.Value.Name(),
		Namespace: result.Value.Namespace(),
	}, nil
}

func (t *trainer) Await(ctx context.Context, handle Handle) (k8s.JobStatus, error) {
	result := <-t.cluster.GetJob(ctx, t.backoff(), handle.Name, k8s.JobIsDone)
	if result.Err != nil {
		return "", result.Err
	}
	return result.Value.Status(), nil
}

func (t *trainer) Observe(
	ctx context.Context, handle Handle, componentName string, rules []domain.MetricRule,
) error {
	extractor, err := metrics.Compile(rules)
	if err != nil {
		return err
	}

	// wait for the job to have a running pod with a log stream.
	result := <-t.cluster.GetJob(
		ctx, t.backoff(), handle.Name,
		func(j *kubebatch.Job) error { return nil },
	)
	if result.Err != nil {
		return result.Err
	}
	job := result.Value

	stream, err := retry.Blocking(ctx, t.backoff(), func() (io.ReadCloser, error) {
		s, err := job.Log(ctx, TrainerContainer)
		if err != nil {
			// pods may not be listed yet; refresh the snapshot and retry.
			refreshed := <-t.cluster.GetJob(ctx, retry.StaticBackoff(time.Millisecond), handle.Name)
			if refreshed.Err == nil {
				job = refreshed.Value
			}
			return nil, retry.ErrRetry
		}
		return s, nil
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	return extractor.Observe(
		ctx, stream, t.now,
		func(metric string, obs domain.Observation) error {
			return t.components.AppendObservations(
				ctx, componentName, metric, []domain.Observation{obs},
			)
		},
	)
}
