// Package dispatch runs the SDK's fire-and-forget work on a queue bound to
// the lifetime of the client.
//
// Synchronous entry points such as Track or Identify submit a function and
// return immediately. Submit never blocks the caller: when the concurrency
// limit is reached the task waits in its own goroutine for a free slot.
// Each submission returns a *Task, a small future that callers (mostly
// tests) may Await.
//
//	q := dispatch.New(dispatch.WithLimit(8), dispatch.WithLogger(log))
//	defer q.Close(context.Background())
//
//	task := q.Submit(ctx, "events", func(ctx context.Context) error {
//	    return deliverer.Deliver(ctx, batch)
//	})
//
//	q.Flush(ctx) // wait for everything submitted so far
//
// Task contexts keep the values of the submitting context but not its
// cancellation, so a request-scoped context ending does not abort background
// delivery. Close cancels all task contexts once its own context expires.
// There is no per-task cancellation.
package dispatch
