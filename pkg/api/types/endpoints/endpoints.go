package endpoints

import (
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	"github.com/trellis-ml/trellis/pkg/plane/endpoint"
)

// Spec is the request body to deploy an inference endpoint.
type Spec struct {
	Name  string `json:"name"`
	Image string `json:"image"`

	// ArtifactURI points at the model artifact the server loads.
	ArtifactURI string `json:"artifactUri"`

	Instance apijobs.Instance `json:"instance,omitempty"`
}

func (s Spec) Equal(o Spec) bool {
	return s == o
}

func (s Spec) ToModel() endpoint.Model {
	return endpoint.Model{
		Name:        s.Name,
		Image:       s.Image,
		ArtifactURI: s.ArtifactURI,
	}
}

// Handle identifies a deployed endpoint.
type Handle struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Host      string `json:"host"`
	Port      int32  `json:"port"`
}

func (h Handle) Equal(o Handle) bool {
	return h == o
}

func ComposeHandle(h endpoint.Handle) Handle {
	return Handle{
		Name:      h.Name,
		Namespace: h.Namespace,
		Host:      h.Host,
		Port:      h.Port,
	}
}
