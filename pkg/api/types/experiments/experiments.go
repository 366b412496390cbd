package experiments

import (
	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/utils/rfctime"
)

type Detail struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

func ComposeDetail(e domain.Experiment) Detail {
	return Detail{
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   rfctime.New(e.CreatedAt),
	}
}

func (d Detail) Equal(o Detail) bool {
	return d.Name == o.Name &&
		d.Description == o.Description &&
		d.CreatedAt.Equal(o.CreatedAt)
}

// Spec is the request body to register an experiment.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s Spec) Equal(o Spec) bool {
	return s == o
}
