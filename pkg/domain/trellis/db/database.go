package db

import (
	kcomponent "github.com/trellis-ml/trellis/pkg/domain/component/db"
	kexperiment "github.com/trellis-ml/trellis/pkg/domain/experiment/db"
	kschema "github.com/trellis-ml/trellis/pkg/domain/schema/db"
	ktrial "github.com/trellis-ml/trellis/pkg/domain/trial/db"
)

type TrellisDatabase interface {
	Experiment() kexperiment.ExperimentInterface
	Trial() ktrial.TrialInterface
	Component() kcomponent.ComponentInterface
	Schema() kschema.SchemaInterface
	Close() error
}
