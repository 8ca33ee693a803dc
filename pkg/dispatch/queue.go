package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/parcelvoy/go-sdk/pkg/logger"
)

// Queue executes submitted functions in the background with bounded concurrency.
// Safe for concurrent use.
type Queue struct {
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	pending int
	idle    chan struct{} // closed while pending == 0
}

// Option configures a Queue.
type Option func(*queueOptions)

type queueOptions struct {
	limit  int
	logger *slog.Logger
}

// WithLimit bounds the number of tasks running at once. Zero or negative means unbounded.
func WithLimit(n int) Option {
	return func(o *queueOptions) { o.limit = n }
}

// WithLogger sets the logger used for task failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *queueOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a running queue.
func New(opts ...Option) *Queue {
	o := &queueOptions{limit: 16, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	q := &Queue{
		ctx:    ctx,
		cancel: cancel,
		logger: o.logger.With(logger.Component("dispatch")),
		idle:   idle,
	}
	if o.limit > 0 {
		q.group.SetLimit(o.limit)
	}
	return q
}

// Submit schedules fn and returns immediately. After Close the returned task
// is already complete with ErrQueueClosed.
func (q *Queue) Submit(ctx context.Context, name string, fn func(context.Context) error) *Task {
	task := newTask(name)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		task.finish(ErrQueueClosed)
		return task
	}
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
	q.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(q.ctx, cancel)

	run := func() error {
		defer q.release()
		defer cancel()
		defer stop()

		err := q.execute(taskCtx, fn)
		if err != nil {
			q.logger.LogAttrs(taskCtx, slog.LevelDebug, "background task failed",
				slog.String("task", name),
				logger.Error(err),
			)
		}
		task.finish(err)
		// Failures are reported through the task, never through the group.
		return nil
	}

	if !q.group.TryGo(run) {
		go q.group.Go(run)
	}
	return task
}

func (q *Queue) execute(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return fn(ctx)
}

func (q *Queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
}

// Pending returns the number of submitted tasks that have not finished yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Flush waits until the queue is idle or ctx is done. Tasks submitted while
// Flush waits (for example chained work) are waited for as well.
func (q *Queue) Flush(ctx context.Context) error {
	for {
		q.mu.Lock()
		idle := q.idle
		empty := q.pending == 0
		q.mu.Unlock()
		if empty {
			return nil
		}

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting tasks and waits for running ones. When ctx expires
// first, the contexts of the remaining tasks are cancelled.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	err := q.Flush(ctx)
	q.cancel()
	if err != nil {
		return err
	}
	return q.group.Wait()
}
