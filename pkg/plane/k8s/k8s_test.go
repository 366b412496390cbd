package k8s_test

import (
	"errors"
	"testing"

	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"

	"github.com/trellis-ml/trellis/pkg/plane/k8s"
	"github.com/trellis-ml/trellis/pkg/utils/retry"
)

func TestJobIsDone(t *testing.T) {
	theory := func(conditions []kubebatch.JobCondition, done bool) func(*testing.T) {
		return func(t *testing.T) {
			job := &kubebatch.Job{}
			job.Status.Conditions = conditions

			err := k8s.JobIsDone(job)
			if done {
				if err != nil {
					t.Errorf("job should be done: %s", err)
				}
				return
			}
			if !errors.Is(err, retry.ErrRetry) {
				t.Errorf("job should not be done yet: %v", err)
			}
		}
	}

	t.Run("when the job has no condition, it waits", theory(nil, false))

	t.Run("when the job is complete, it is done", theory(
		[]kubebatch.JobCondition{
			{Type: kubebatch.JobComplete, Status: kubecore.ConditionTrue},
		},
		true,
	))

	t.Run("when the job is failed, it is done", theory(
		[]kubebatch.JobCondition{
			{Type: kubebatch.JobFailed, Status: kubecore.ConditionTrue},
		},
		true,
	))

	t.Run("when the terminal condition is not true, it waits", theory(
		[]kubebatch.JobCondition{
			{Type: kubebatch.JobComplete, Status: kubecore.ConditionFalse},
		},
		false,
	))
}
