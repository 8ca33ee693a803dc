package dispatch

import (
	"context"
)

// Task is the eventual result of a submitted function.
type Task struct {
	name string
	err  error
	done chan struct{}
}

func newTask(name string) *Task {
	return &Task{name: name, done: make(chan struct{})}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Name returns the label the task was submitted with.
func (t *Task) Name() string { return t.name }

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Await blocks until the task finishes or ctx is done.
func (t *Task) Await(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsComplete reports whether the task has finished without blocking.
func (t *Task) IsComplete() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
