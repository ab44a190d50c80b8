package registry

import (
	"context"
	"time"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Task is the handle of an asynchronous test or run.
type Task[T any] struct {
	done   chan struct{}
	result T
	err    error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// resolvedTask returns a task that has already finished.
func resolvedTask[T any](result T, err error) *Task[T] {
	t := newTask[T]()
	t.finish(result, err)
	return t
}

func (t *Task[T]) finish(result T, err error) {
	t.result = result
	t.err = err
	close(t.done)
}

// Done is closed once the task has resolved.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx is done. A ctx that ends
// first only stops the wait; the task keeps running.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TestResult is the outcome of TestConnection.
type TestResult struct {
	ConnectionID string
	Status       core.ConnectionStatus
	// Reason is the validation message when Status is Disconnected.
	Reason string
	// Applied is false when the record was removed or a newer test
	// superseded this one.
	Applied bool
}

// RunResult is the outcome of RunPipeline.
type RunResult struct {
	PipelineID string
	Status     core.PipelineStatus
	FinishedAt time.Time
	Applied    bool
}
