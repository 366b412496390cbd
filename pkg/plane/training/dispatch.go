package training

import (
	"context"
	"sync"
	"time"
)

// Dispatch is the outcome of one fire-and-forget submission.
type Dispatch struct {
	Submission Submission
	Handle     Handle
	Err        error
}

// SubmitAll dispatches each submission in its own goroutine and
// reports outcomes over the returned channel, which is closed after
// the last outcome.
//
// Dispatches are spaced by the courtesy delay to avoid hammering the
// cluster with create calls; the delay is etiquette, not correctness.
// A failed dispatch does not stop the others, and already-created jobs
// are left running.
func SubmitAll(
	ctx context.Context,
	trainer Trainer,
	submissions []Submission,
	courtesy time.Duration,
) <-chan Dispatch {
	ch := make(chan Dispatch, len(submissions))

	go func() {
		defer close(ch)

		wg := sync.WaitGroup{}
		defer wg.Wait()

		for i, submission := range submissions {
			if 0 < i {
				select {
				case <-ctx.Done():
					ch <- Dispatch{Submission: submission, Err: ctx.Err()}
					continue
				case <-time.After(courtesy):
				}
			}

			wg.Add(1)
			go func(submission Submission) {
				defer wg.Done()
				handle, err := trainer.Submit(ctx, submission)
				ch <- Dispatch{Submission: submission, Handle: handle, Err: err}
			}(submission)
		}
	}()

	return ch
}
