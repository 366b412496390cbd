package plane

import (
	"fmt"

	kubecore "k8s.io/api/core/v1"
	kubeapiresource "k8s.io/apimachinery/pkg/api/resource"
)

// InstanceSpec is the resource shape of a workload on the cluster.
type InstanceSpec struct {
	CPU    string
	Memory string
	GPU    int64
}

// ResourceList renders the spec as k8s resource requests/limits.
func (s InstanceSpec) ResourceList() (kubecore.ResourceList, error) {
	resources := kubecore.ResourceList{}
	if s.CPU != "" {
		q, err := kubeapiresource.ParseQuantity(s.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu: %w", err)
		}
		resources[kubecore.ResourceCPU] = q
	}
	if s.Memory != "" {
		q, err := kubeapiresource.ParseQuantity(s.Memory)
		if err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
		resources[kubecore.ResourceMemory] = q
	}
	if 0 < s.GPU {
		resources["nvidia.com/gpu"] = *kubeapiresource.NewQuantity(
			s.GPU, kubeapiresource.DecimalSI,
		)
	}
	return resources, nil
}
