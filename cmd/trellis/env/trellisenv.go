package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TrellisEnv carries project-local defaults, loaded from a "trellisenv"
// file found near the working directory.
type TrellisEnv struct {
	// Experiment is the default experiment name for trials and jobs.
	Experiment string `yaml:"experiment"`

	// Resource is the default instance shape for jobs, like
	// {cpu: "2", memory: "4Gi"}.
	Resource map[string]string `yaml:"resource"`
}

func New() *TrellisEnv {
	return new(TrellisEnv)
}

func LoadTrellisEnv(filepath string) (*TrellisEnv, error) {

	env := TrellisEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
