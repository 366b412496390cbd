package k8s

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	kubeapps "k8s.io/api/apps/v1"
	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/trellis-ml/trellis/pkg/plane"
	"github.com/trellis-ml/trellis/pkg/utils/retry"
)

// LabelSelector is an equality-based label selector.
type LabelSelector map[string]string

func (ls LabelSelector) QueryString() string {
	terms := make([]string, 0, len(ls))
	for key, value := range ls {
		terms = append(terms, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(terms)
	return strings.Join(terms, ",")
}

// subset of k8s.Clientset
type K8sClient interface {
	GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error)
	CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
	DeleteService(ctx context.Context, namespace string, svcname string) error

	GetDeployment(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error)
	CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)
	DeleteDeployment(ctx context.Context, namespace string, deplname string) error

	GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error)
	CreateJob(ctx context.Context, namespace string, spec *kubebatch.Job) (*kubebatch.Job, error)
	DeleteJob(ctx context.Context, namespace string, name string) error

	FindPods(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubecore.Pod, error)

	Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error)
}

// A wrapper for the type k8s.Clientset; because it does not prefer
// method chain-style invocations of that type.
type k8sClient struct {
	client *k8s.Clientset
}

var _ K8sClient = &k8sClient{}

func WrapK8sClient(c *k8s.Clientset) K8sClient {
	return &k8sClient{client: c}
}

// ConnectToK8s builds a clientset from the in-cluster configuration.
func ConnectToK8s() (*k8s.Clientset, error) {
	conf, err := rest.InClusterConfig()
	if err != nil {
		return nil, err
	}
	return k8s.NewForConfig(conf)
}

func (k *k8sClient) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Create(ctx, svc, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Get(ctx, svcname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeleteService(ctx context.Context, namespace string, svcname string) error {
	return k.client.CoreV1().Services(namespace).Delete(ctx, svcname, *kubeapimeta.NewDeleteOptions(0))
}

func (k *k8sClient) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	return k.client.AppsV1().Deployments(namespace).Create(ctx, depl, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) GetDeployment(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
	return k.client.AppsV1().Deployments(namespace).Get(ctx, deplname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeleteDeployment(ctx context.Context, namespace string, deplname string) error {
	return k.client.AppsV1().Deployments(namespace).Delete(ctx, deplname, *kubeapimeta.NewDeleteOptions(0))
}

func (k *k8sClient) CreateJob(ctx context.Context, namespace string, job *kubebatch.Job) (*kubebatch.Job, error) {
	return k.client.BatchV1().Jobs(namespace).Create(ctx, job, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error) {
	return k.client.BatchV1().Jobs(namespace).Get(ctx, name, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeleteJob(ctx context.Context, namespace string, name string) error {
	foreground := kubeapimeta.DeletePropagationForeground
	zero := int64(0)
	return k.client.BatchV1().Jobs(namespace).Delete(ctx, name, kubeapimeta.DeleteOptions{
		GracePeriodSeconds: &zero,
		PropagationPolicy:  &foreground,
	})
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, labels LabelSelector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error) {
	return k.client.
		CoreV1().
		Pods(namespace).
		GetLogs(podname, &kubecore.PodLogOptions{Container: container, Follow: true}).
		Stream(ctx)
}

type service struct {
	resource *kubecore.Service
	domain   string
	close    func() error
}

// Abstraction of k8s Service
type Service interface {
	Namespace() string
	Name() string

	// get service domain name.
	Host() string

	// get service cluster IP
	IP() string

	// get named port number.
	Port(name string) int32

	// release resources. Delete service.
	Close() error
}

func (s *service) Namespace() string {
	return s.resource.GetNamespace()
}

func (s *service) Name() string {
	return s.resource.GetName()
}

func (s *service) IP() string {
	return s.resource.Spec.ClusterIP
}

func (s *service) Host() string {
	return fmt.Sprintf("%s.%s.svc.%s", s.Name(), s.Namespace(), s.domain)
}

// Get port number named as parameter `name`. If not found, return `0`.
func (s *service) Port(name string) int32 {
	for _, p := range s.resource.Spec.Ports {
		if p.Name == name {
			return p.Port
		}
	}
	return 0
}

func (s *service) Close() error {
	return s.close()
}

type deployment struct {
	resource *kubeapps.Deployment
	onClose  func() error
}

// Abstraction of k8s Deployment
type Deployment interface {
	Name() string
	Namespace() string

	// release resources. Delete deployment and related pods.
	Close() error
}

func (d *deployment) Namespace() string {
	return d.resource.GetNamespace()
}

func (d *deployment) Name() string {
	return d.resource.GetName()
}

func (d *deployment) Close() error {
	if d.onClose == nil {
		return nil
	}
	return d.onClose()
}

type JobStatus string

const (
	// no pods have been started.
	Pending JobStatus = "Pending"

	// at least one pod has started, and the job has not completed.
	Running JobStatus = "Running"

	// the job is succeeded.
	Succeeded JobStatus = "Succeeded"

	// the job is failed.
	Failed JobStatus = "Failed"
)

// abstraction of k8s job.
type Job interface {
	// the name of the job
	Name() string

	// the namespace where the job is placed in
	Namespace() string

	// how does the job progress.
	//
	// This value is just a SNAPSHOT of the job when you get the
	// instance. To refresh, get a new instance with `Cluster.GetJob`.
	Status() JobStatus

	// ExitCode returns the exit code of the named container.
	//
	// ok is true only when the container has terminated.
	ExitCode(container string) (exitCode uint8, reason string, ok bool)

	// Log gets the log stream of the named container, in follow mode.
	Log(ctx context.Context, containerName string) (io.ReadCloser, error)

	// destroy the job. If the job is running or pending, it is aborted.
	Close() error
}

type job struct {
	job    *kubebatch.Job
	pods   []kubecore.Pod
	client K8sClient
	close  func() error
}

var _ Job = &job{}

func (j *job) Name() string {
	return j.job.Name
}

func (j *job) Namespace() string {
	return j.job.Namespace
}

func (j *job) Status() JobStatus {
	for _, sc := range j.job.Status.Conditions {
		if sc.Status != "True" {
			continue
		}
		switch sc.Type {
		case kubebatch.JobComplete:
			return Succeeded
		case kubebatch.JobFailed:
			return Failed
		}
	}

	for _, p := range j.pods {
		// if at least one pod has been run, the job has been run.
		switch p.Status.Phase {
		case kubecore.PodRunning, kubecore.PodSucceeded, kubecore.PodFailed:
			return Running
		}
	}

	return Pending
}

func (j *job) Log(ctx context.Context, containerName string) (io.ReadCloser, error) {
	if len(j.pods) == 0 {
		return nil, errors.New("no pods")
	}
	pod := j.pods[0]
	return j.client.Log(ctx, pod.Namespace, pod.Name, containerName)
}

func (j *job) ExitCode(container string) (uint8, string, bool) {
	for _, p := range j.pods {
		for _, c := range p.Status.ContainerStatuses {
			if c.Name != container {
				continue
			}
			if term := c.State.Terminated; term != nil {
				return uint8(term.ExitCode), term.Reason, true
			}
			break
		}
	}
	return 0, "", false
}

func (j *job) Close() error {
	if j.close == nil {
		return nil
	}
	return j.close()
}

type Cluster interface {
	Namespace() string
	Domain() string

	// Create new Service and wait for it to satisfy all requirements.
	//
	// If no requirements are given, ServiceIsReady is used as default.
	//
	// Whether or not the Promise has Error, the service can be created,
	// so you may need to Close() it.
	NewService(context.Context, retry.Backoff, *kubecore.Service, ...Requirement[*kubecore.Service]) retry.Promise[Service]

	// Create new Deployment.
	//
	// If no requirements are given, EnoughReplicas is used as default.
	NewDeployment(context.Context, retry.Backoff, *kubeapps.Deployment, ...Requirement[*kubeapps.Deployment]) retry.Promise[Deployment]

	// Create new k8s job.
	//
	// If no requirements are given, JobHaveBeenCreated is used as
	// default.
	NewJob(context.Context, retry.Backoff, *kubebatch.Job, ...Requirement[*kubebatch.Job]) retry.Promise[Job]

	// Get existing k8s job.
	GetJob(context.Context, retry.Backoff, string, ...Requirement[*kubebatch.Job]) retry.Promise[Job]

	// Delete a Service by name.
	DeleteService(ctx context.Context, name string) error

	// Delete a Deployment (and its pods) by name.
	DeleteDeployment(ctx context.Context, name string) error
}

type k8sCluster struct {
	client    K8sClient
	namespace string
	domain    string
}

// Requirement is a function that checks if a created k8s resource
// satisfies the requirement.
//
// # Return
//
// - error: nil when the value satisfies the requirement;
// `retry.ErrRetry` while waiting to satisfy it; any other error
// otherwise.
type Requirement[T any] func(value T) error

func WithCheckpoint[T any](requirement Requirement[T], deadline time.Time) Requirement[T] {
	satisfied := false
	return func(value T) error {
		if satisfied {
			return nil
		}
		if time.Now().After(deadline) {
			return plane.ErrDeadlineExceeded
		}

		err := requirement(value)
		if err != nil {
			return err
		}

		satisfied = true
		return nil
	}
}

func satisfyAll[T any](value T, req []Requirement[T]) error {
	for _, r := range req {
		if err := r(value); err != nil {
			return err
		}
	}
	return nil
}

var _ Cluster = &k8sCluster{}

// Attach kubernetes cluster.
//
// args:
//   - client: k8s clientset
//   - namespace: k8s namespace
//   - domain: k8s-internal domain name. If empty string is passed,
//     it uses "cluster.local" as default.
func AttachCluster(client K8sClient, namespace string, domain string) Cluster {
	if domain == "" {
		domain = "cluster.local"
	}
	return &k8sCluster{client: client, namespace: namespace, domain: domain}
}

func (c *k8sCluster) Namespace() string {
	return c.namespace
}

func (c *k8sCluster) Domain() string {
	return c.domain
}

var ServiceIsReady Requirement[*kubecore.Service] = func(value *kubecore.Service) error {
	if value.Spec.ClusterIP != "" {
		return nil
	}
	return retry.ErrRetry
}

func (c *k8sCluster) NewService(
	ctx context.Context, backoff retry.Backoff, svcconf *kubecore.Service,
	requirements ...Requirement[*kubecore.Service],
) retry.Promise[Service] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubecore.Service]{ServiceIsReady}
	}

	select {
	case <-ctx.Done():
		return retry.Failed[Service](ctx.Err())
	default:
	}

	svc, err := c.client.CreateService(ctx, c.namespace, svcconf)
	if err != nil {
		if kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Service](plane.NewConflictCausedBy("", err))
		}
		return retry.Failed[Service](err)
	}
	_close := func() error {
		return c.client.DeleteService(
			context.Background(), // close should run if given has closed.
			c.namespace,
			svcconf.ObjectMeta.Name,
		)
	}
	if err := satisfyAll(svc, requirements); err == nil {
		return retry.Ok[Service](&service{resource: svc, domain: c.domain, close: _close})
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Service](err)
	}

	return retry.Go(ctx, backoff, func() (Service, error) {
		svc, err := c.client.GetService(ctx, c.namespace, svcconf.ObjectMeta.Name)
		ret := &service{resource: svc, domain: c.domain, close: _close}
		if err != nil {
			return ret, err
		}
		return ret, satisfyAll(svc, requirements)
	})
}

var EnoughReplicas Requirement[*kubeapps.Deployment] = func(value *kubeapps.Deployment) error {
	replicas := int32(1)
	if value.Spec.Replicas != nil {
		replicas = *value.Spec.Replicas
	}
	if replicas <= value.Status.AvailableReplicas {
		return nil
	}
	return retry.ErrRetry
}

func (c *k8sCluster) NewDeployment(
	ctx context.Context, backoff retry.Backoff, dplconf *kubeapps.Deployment,
	requirements ...Requirement[*kubeapps.Deployment],
) retry.Promise[Deployment] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubeapps.Deployment]{EnoughReplicas}
	}

	select {
	case <-ctx.Done():
		return retry.Failed[Deployment](ctx.Err())
	default:
	}

	dpl, err := c.client.CreateDeployment(ctx, c.namespace, dplconf)
	if err != nil {
		if kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Deployment](plane.NewConflictCausedBy("", err))
		}
		return retry.Failed[Deployment](err)
	}
	_close := func() error {
		return c.client.DeleteDeployment(
			context.Background(), // close should run if given has closed.
			c.namespace,
			dplconf.ObjectMeta.Name,
		)
	}

	if err := satisfyAll(dpl, requirements); err == nil {
		return retry.Ok[Deployment](&deployment{resource: dpl, onClose: _close})
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Deployment](err)
	}

	return retry.Go(ctx, backoff, func() (Deployment, error) {
		dpl, err := c.client.GetDeployment(ctx, c.namespace, dplconf.ObjectMeta.Name)
		ret := &deployment{resource: dpl, onClose: _close}
		if err != nil {
			return ret, err
		}
		return ret, satisfyAll(dpl, requirements)
	})
}

var JobHaveBeenCreated Requirement[*kubebatch.Job] = func(value *kubebatch.Job) error {
	return nil
}

// JobIsDone is satisfied when the job has a terminal condition,
// complete or failed.
var JobIsDone Requirement[*kubebatch.Job] = func(value *kubebatch.Job) error {
	for _, sc := range value.Status.Conditions {
		if sc.Status != "True" {
			continue
		}
		switch sc.Type {
		case kubebatch.JobComplete, kubebatch.JobFailed:
			return nil
		}
	}
	return retry.ErrRetry
}

func (c *k8sCluster) NewJob(
	ctx context.Context, p retry.Backoff, j *kubebatch.Job,
	requirements ...Requirement[*kubebatch.Job],
) retry.Promise[Job] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubebatch.Job]{JobHaveBeenCreated}
	}

	select {
	case <-ctx.Done():
		return retry.Failed[Job](ctx.Err())
	default:
	}
	_job, err := c.client.CreateJob(ctx, c.namespace, j)
	if err != nil {
		if kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Job](plane.NewConflictCausedBy("", err))
		}
		return retry.Failed[Job](err)
	}
	_close := func() error {
		return c.client.DeleteJob(
			context.Background(), c.namespace, _job.ObjectMeta.Name,
		)
	}

	if err := satisfyAll(_job, requirements); err == nil {
		pods, err := c.client.FindPods(
			ctx, c.namespace,
			LabelSelector(_job.Spec.Selector.MatchLabels),
		)
		if err != nil {
			pods = []kubecore.Pod{}
		}
		return retry.Ok[Job](&job{job: _job, pods: pods, client: c.client, close: _close})
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Job](err)
	}

	return c.GetJob(ctx, p, _job.ObjectMeta.Name, requirements...)
}

func (c *k8sCluster) GetJob(
	ctx context.Context, p retry.Backoff, name string,
	requirements ...Requirement[*kubebatch.Job],
) retry.Promise[Job] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubebatch.Job]{JobHaveBeenCreated}
	}
	_close := func() error {
		return c.client.DeleteJob(context.Background(), c.namespace, name)
	}

	return retry.Go(ctx, p, func() (Job, error) {
		_job, err := c.client.GetJob(ctx, c.namespace, name)
		ret := &job{
			job: _job, close: _close, client: c.client,
		}

		if err != nil {
			if kubeerr.IsNotFound(err) {
				return ret, plane.NewMissingCausedBy("", err)
			}
			return ret, err
		}

		if err := satisfyAll(_job, requirements); err != nil {
			return ret, err
		}

		pods, err := c.client.FindPods(
			ctx, c.namespace,
			LabelSelector(_job.Spec.Selector.MatchLabels),
		)
		if err == nil {
			ret.pods = pods
		}
		return ret, nil
	})
}

func (c *k8sCluster) DeleteService(ctx context.Context, name string) error {
	if err := c.client.DeleteService(ctx, c.namespace, name); err != nil {
		if kubeerr.IsNotFound(err) {
			return plane.NewMissingCausedBy(name, err)
		}
		return err
	}
	return nil
}

func (c *k8sCluster) DeleteDeployment(ctx context.Context, name string) error {
	if err := c.client.DeleteDeployment(ctx, c.namespace, name); err != nil {
		if kubeerr.IsNotFound(err) {
			return plane.NewMissingCausedBy(name, err)
		}
		return err
	}
	return nil
}
