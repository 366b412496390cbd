package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/trellis-ml/trellis/pkg/domain"
	"github.com/trellis-ml/trellis/pkg/metrics"
	"github.com/trellis-ml/trellis/pkg/utils/cmp"
	"github.com/trellis-ml/trellis/pkg/utils/try"
)

func TestCompile(t *testing.T) {
	t.Run("it rejects a pattern without capture group", func(t *testing.T) {
		_, err := metrics.Compile([]domain.MetricRule{
			{Name: "train:loss", Pattern: `loss: [0-9.]+`},
		})
		if err == nil {
			t.Error("Compile does not error for pattern without capture group")
		}
	})

	t.Run("it rejects a broken pattern", func(t *testing.T) {
		_, err := metrics.Compile([]domain.MetricRule{
			{Name: "train:loss", Pattern: `loss: ([0-9.+`},
		})
		if err == nil {
			t.Error("Compile does not error for broken pattern")
		}
	})

	t.Run("it rejects a rule without name", func(t *testing.T) {
		_, err := metrics.Compile([]domain.MetricRule{
			{Name: "", Pattern: `loss: ([0-9.]+)`},
		})
		if err == nil {
			t.Error("Compile does not error for rule without name")
		}
	})
}

func TestExtractLine(t *testing.T) {
	stamp := try.To(time.Parse(time.RFC3339, "2024-10-30T12:34:56+00:00")).OrFatal(t)

	type When struct {
		rules []domain.MetricRule
		line  string
	}
	type Then struct {
		matches []metrics.Match
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			testee := try.To(metrics.Compile(when.rules)).OrFatal(t)

			actual := testee.ExtractLine(when.line, stamp)
			if !cmp.SliceEqWith(actual, then.matches, metrics.Match.Equal) {
				t.Errorf(
					"unmatch: (actual, expected) = (%+v, %+v)",
					actual, then.matches,
				)
			}
		}
	}

	t.Run("when a training progress line comes, it extracts the loss", theory(
		When{
			rules: []domain.MetricRule{
				{Name: "train:loss", Pattern: `loss: ([0-9.]+) - acc: [0-9.]+`},
			},
			line: "#015 32/100 [========>.....] - ETA: 0s - loss: 1.9211 - acc: 0.0703",
		},
		Then{
			matches: []metrics.Match{
				{
					Metric:      "train:loss",
					Observation: domain.Observation{Timestamp: stamp, Value: 1.9211},
				},
			},
		},
	))

	t.Run("when several rules match one line, each yields an observation", theory(
		When{
			rules: []domain.MetricRule{
				{Name: "train:loss", Pattern: `loss: ([0-9.]+)`},
				{Name: "train:accuracy", Pattern: `acc: ([0-9.]+)`},
			},
			line: "loss: 1.9211 - acc: 0.0703",
		},
		Then{
			matches: []metrics.Match{
				{
					Metric:      "train:loss",
					Observation: domain.Observation{Timestamp: stamp, Value: 1.9211},
				},
				{
					Metric:      "train:accuracy",
					Observation: domain.Observation{Timestamp: stamp, Value: 0.0703},
				},
			},
		},
	))

	t.Run("when a rule matches one line several times, each occurrence is captured", theory(
		When{
			rules: []domain.MetricRule{
				{Name: "fold:loss", Pattern: `loss=([0-9.]+)`},
			},
			line: "fold 1 loss=0.91 | fold 2 loss=0.87",
		},
		Then{
			matches: []metrics.Match{
				{
					Metric:      "fold:loss",
					Observation: domain.Observation{Timestamp: stamp, Value: 0.91},
				},
				{
					Metric:      "fold:loss",
					Observation: domain.Observation{Timestamp: stamp, Value: 0.87},
				},
			},
		},
	))

	t.Run("when no rule matches, it yields nothing", theory(
		When{
			rules: []domain.MetricRule{
				{Name: "train:loss", Pattern: `loss: ([0-9.]+)`},
			},
			line: "epoch 3/10 started",
		},
		Then{matches: []metrics.Match{}},
	))

	t.Run("when the capture is not a number, it yields nothing", theory(
		When{
			rules: []domain.MetricRule{
				{Name: "train:loss", Pattern: `loss: (\S+)`},
			},
			line: "loss: n/a",
		},
		Then{matches: []metrics.Match{}},
	))
}

func TestObserve(t *testing.T) {
	t.Run("it feeds observations per line into the sink", func(t *testing.T) {
		testee := try.To(metrics.Compile([]domain.MetricRule{
			{Name: "train:loss", Pattern: `loss: ([0-9.]+)`},
		})).OrFatal(t)

		stream := strings.NewReader(strings.Join([]string{
			"epoch 1/3",
			"loss: 1.9211 - acc: 0.0703",
			"checkpoint saved",
			"loss: 1.2000 - acc: 0.3100",
			"",
		}, "\n"))

		tick := 0
		now := func() time.Time {
			tick += 1
			return time.Date(2024, 10, 30, 12, 0, tick, 0, time.UTC)
		}

		got := map[string][]domain.Observation{}
		err := testee.Observe(
			context.Background(), stream, now,
			func(metric string, obs domain.Observation) error {
				got[metric] = append(got[metric], obs)
				return nil
			},
		)
		if err != nil {
			t.Fatalf("Observe returns error: %s", err)
		}

		want := map[string][]domain.Observation{
			"train:loss": {
				{Timestamp: time.Date(2024, 10, 30, 12, 0, 2, 0, time.UTC), Value: 1.9211},
				{Timestamp: time.Date(2024, 10, 30, 12, 0, 4, 0, time.UTC), Value: 1.2},
			},
		}
		if !cmp.MapEqWith(got, want, func(a, b []domain.Observation) bool {
			return cmp.SliceEqWith(a, b, domain.Observation.Equal)
		}) {
			t.Errorf("unmatch: (actual, expected) = (%+v, %+v)", got, want)
		}
	})

	t.Run("when no line matches, it ends without error nor observation", func(t *testing.T) {
		testee := try.To(metrics.Compile([]domain.MetricRule{
			{Name: "train:loss", Pattern: `loss: ([0-9.]+)`},
		})).OrFatal(t)

		called := 0
		err := testee.Observe(
			context.Background(),
			strings.NewReader("nothing to see here\nnor here\n"),
			time.Now,
			func(string, domain.Observation) error {
				called += 1
				return nil
			},
		)
		if err != nil {
			t.Fatalf("Observe returns error: %s", err)
		}
		if called != 0 {
			t.Errorf("sink is called %d times, but no line should match", called)
		}
	})
}
