// Package endpoint manages inference endpoints: one Deployment
// serving a model, fronted by one Service.
package endpoint

import (
	"context"
	"fmt"
	"time"

	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/trellis-ml/trellis/pkg/plane"
	"github.com/trellis-ml/trellis/pkg/plane/k8s"
	"github.com/trellis-ml/trellis/pkg/utils/pointer"
	"github.com/trellis-ml/trellis/pkg/utils/retry"
)

const (
	// container serving the model.
	ServerContainer = "server"

	// named port the server listens on.
	PortName = "http"

	containerPort = int32(8080)
	servicePort   = int32(80)

	LabelEndpoint = "trellis/endpoint"
)

// Model is what an endpoint serves.
type Model struct {
	// Name of the endpoint. Unique in the namespace.
	Name string

	// Image is the serving image reference.
	Image string

	// ArtifactURI points at the model artifact to load, passed to the
	// server as TRELLIS_MODEL_URI.
	ArtifactURI string
}

// Handle identifies a deployed endpoint.
type Handle struct {
	Name      string
	Namespace string

	// Host is the cluster-internal domain name of the endpoint.
	Host string

	// Port is the service port.
	Port int32
}

func (h Handle) Equal(other Handle) bool {
	return h == other
}

type Deployer interface {
	// Deploy creates the endpoint's Deployment and Service and waits
	// for them to become ready.
	Deploy(ctx context.Context, model Model, instance plane.InstanceSpec) (Handle, error)

	// Delete removes the endpoint's Service. When deleteConfig is
	// true, the Deployment (the endpoint's configuration) goes too.
	Delete(ctx context.Context, name string, deleteConfig bool) error
}

type deployer struct {
	cluster k8s.Cluster
	backoff func() retry.Backoff
}

type Option func(*deployer) *deployer

func WithBackoff(b func() retry.Backoff) Option {
	return func(d *deployer) *deployer {
		d.backoff = b
		return d
	}
}

func New(cluster k8s.Cluster, options ...Option) Deployer {
	d := &deployer{
		cluster: cluster,
		backoff: func() retry.Backoff { return retry.StaticBackoff(3 * time.Second) },
	}
	for _, opt := range options {
		d = opt(d)
	}
	return d
}

func deploymentName(endpoint string) string {
	return fmt.Sprintf("endpoint-%s", endpoint)
}

func (d *deployer) Deploy(ctx context.Context, model Model, instance plane.InstanceSpec) (Handle, error) {
	if model.Name == "" {
		return Handle{}, fmt.Errorf("endpoint without name")
	}
	if model.Image == "" {
		return Handle{}, fmt.Errorf("endpoint %s: no image", model.Name)
	}

	resources, err := instance.ResourceList()
	if err != nil {
		return Handle{}, fmt.Errorf("endpoint %s: %w", model.Name, err)
	}

	labels := map[string]string{LabelEndpoint: model.Name}
	name := deploymentName(model.Name)

	depl := &kubeapps.Deployment{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      name,
			Namespace: d.cluster.Namespace(),
			Labels:    labels,
		},
		Spec: kubeapps.DeploymentSpec{
			Replicas: pointer.Ref(int32(1)),
			Selector: &kubeapimeta.LabelSelector{MatchLabels: labels},
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{Labels: labels},
				Spec: kubecore.PodSpec{
					Containers: []kubecore.Container{
						{
							Name:  ServerContainer,
							Image: model.Image,
							Env: []kubecore.EnvVar{
								{Name: "TRELLIS_MODEL_URI", Value: model.ArtifactURI},
							},
							Ports: []kubecore.ContainerPort{
								{Name: PortName, ContainerPort: containerPort},
							},
							Resources: kubecore.ResourceRequirements{
								Requests: resources,
								Limits:   resources,
							},
						},
					},
				},
			},
		},
	}

	deplResult := <-d.cluster.NewDeployment(ctx, d.backoff(), depl)
	if deplResult.Err != nil {
		return Handle{}, deplResult.Err
	}

	svc := &kubecore.Service{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      name,
			Namespace: d.cluster.Namespace(),
			Labels:    labels,
		},
		Spec: kubecore.ServiceSpec{
			Selector: labels,
			Ports: []kubecore.ServicePort{
				{
					Name:       PortName,
					Port:       servicePort,
					TargetPort: intstr.FromString(PortName),
				},
			},
		},
	}

	svcResult := <-d.cluster.NewService(ctx, d.backoff(), svc)
	if svcResult.Err != nil {
		// service did not come up; do not leave the deployment behind.
		deplResult.Value.Close()
		return Handle{}, svcResult.Err
	}

	return Handle{
		Name:      model.Name,
		Namespace: d.cluster.Namespace(),
		Host:      svcResult.Value.Host(),
		Port:      svcResult.Value.Port(PortName),
	}, nil
}

func (d *deployer) Delete(ctx context.Context, name string, deleteConfig bool) error {
	if err := d.cluster.DeleteService(ctx, deploymentName(name)); err != nil {
		return err
	}
	if !deleteConfig {
		return nil
	}
	return d.cluster.DeleteDeployment(ctx, deploymentName(name))
}
