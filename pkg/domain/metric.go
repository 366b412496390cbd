package domain

import (
	"fmt"
	"regexp"
)

// MetricRule extracts a named numeric metric from a job's log output.
//
// The pattern is a regular expression with at least one capture group;
// the first group is parsed as the metric value. Rules are fixed at
// job-launch time and applied to every emitted log line. Several rules
// may match the same line; each match yields one observation.
type MetricRule struct {
	// Name of the metric, e.g. "train:loss".
	Name string

	// Pattern is the extraction regular expression.
	Pattern string
}

func (r MetricRule) Equal(other MetricRule) bool {
	return r == other
}

// Validate checks the pattern compiles and captures a value.
func (r MetricRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("metric rule without name")
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("metric rule %s: %w", r.Name, err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("metric rule %s: pattern has no capture group", r.Name)
	}
	return nil
}
