// Package metrics extracts metric observations from job log streams.
package metrics

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

type compiledRule struct {
	name string
	re   *regexp.Regexp
}

// Extractor applies a fixed set of metric rules to log lines.
type Extractor struct {
	rules []compiledRule
}

// Compile validates and compiles metric rules into an Extractor.
//
// The rule set is fixed for the Extractor's lifetime.
func Compile(rules []domain.MetricRule) (*Extractor, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{name: r.Name, re: re})
	}
	return &Extractor{rules: compiled}, nil
}

// Match is one observation extracted from a line.
type Match struct {
	Metric      string
	Observation domain.Observation
}

func (m Match) Equal(other Match) bool {
	return m.Metric == other.Metric &&
		m.Observation.Equal(other.Observation)
}

// ExtractLine applies every rule to the line.
//
// Every occurrence of a rule on the line yields one observation,
// parsed from the rule's first capture group, in match order; rules
// are tried in registration order. Lines matching no rule, and
// captures which are not numbers, yield nothing.
func (x *Extractor) ExtractLine(line string, at time.Time) []Match {
	matches := []Match{}
	for _, rule := range x.rules {
		for _, groups := range rule.re.FindAllStringSubmatch(line, -1) {
			if len(groups) < 2 {
				continue
			}
			value, err := strconv.ParseFloat(groups[1], 64)
			if err != nil {
				continue
			}
			matches = append(matches, Match{
				Metric:      rule.name,
				Observation: domain.Observation{Timestamp: at, Value: value},
			})
		}
	}
	return matches
}

// MetricNames lists the names of the compiled rules.
func (x *Extractor) MetricNames() []string {
	return slices.Map(x.rules, func(r compiledRule) string { return r.name })
}

// Observe scans the stream line by line and sends extracted
// observations to sink, stamped with now() at scan time.
//
// It returns when the stream ends, the context is canceled, or sink
// fails. A stream yielding no match is not an error.
func (x *Extractor) Observe(
	ctx context.Context,
	stream io.Reader,
	now func() time.Time,
	sink func(metric string, observation domain.Observation) error,
) error {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, m := range x.ExtractLine(scanner.Text(), now()) {
			if err := sink(m.Metric, m.Observation); err != nil {
				return err
			}
		}
	}

	return scanner.Err()
}
