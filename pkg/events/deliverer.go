package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/metrics"
)

// DefaultRetries is the number of retries after the first failed attempt.
const DefaultRetries = 3

// Deliverer posts event batches with bounded retry.
type Deliverer struct {
	client  *api.Client
	queue   *dispatch.Queue
	logger  *slog.Logger
	metrics *metrics.Metrics
	retries int
	backoff BackoffStrategy
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records attempts and dropped events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Deliverer) { d.metrics = m }
}

// WithRetries overrides DefaultRetries. Negative values are ignored.
func WithRetries(n int) Option {
	return func(d *Deliverer) {
		if n >= 0 {
			d.retries = n
		}
	}
}

// WithBackoff sets the delay between attempts. Default NoBackoff.
func WithBackoff(b BackoffStrategy) Option {
	return func(d *Deliverer) {
		if b != nil {
			d.backoff = b
		}
	}
}

// New creates a deliverer.
func New(client *api.Client, queue *dispatch.Queue, opts ...Option) *Deliverer {
	d := &Deliverer{
		client:  client,
		queue:   queue,
		logger:  slog.Default(),
		retries: DefaultRetries,
		backoff: NoBackoff{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("events"))
	return d
}

// Track submits batch for delivery and returns immediately. The task
// completes once the batch is delivered or dropped.
func (d *Deliverer) Track(ctx context.Context, batch ...api.Event) *dispatch.Task {
	return d.queue.Submit(ctx, "events", func(ctx context.Context) error {
		return d.Deliver(ctx, batch)
	})
}

// Deliver posts batch, retrying transport and status failures. It returns
// the last error once every attempt has failed; the batch is then gone.
func (d *Deliverer) Deliver(ctx context.Context, batch []api.Event) error {
	if len(batch) == 0 {
		return ErrNoEvents
	}

	var lastErr error
	attempts := d.retries + 1
	for attempt := range attempts {
		if attempt > 0 {
			if delay := d.backoff.NextInterval(attempt); delay > 0 {
				select {
				case <-ctx.Done():
					return d.drop(ctx, batch, attempt, ctx.Err())
				case <-time.After(delay):
				}
			}
		}

		_, err := api.Post[api.Empty](ctx, d.client, "events", batch)
		d.metrics.ObserveEventAttempt(err)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return d.drop(ctx, batch, attempt+1, err)
		}
		d.logger.LogAttrs(ctx, slog.LevelDebug, "event delivery attempt failed",
			logger.Attempt(attempt+1),
			logger.Error(err),
		)
	}

	return d.drop(ctx, batch, attempts, lastErr)
}

func (d *Deliverer) drop(ctx context.Context, batch []api.Event, attempts int, err error) error {
	d.metrics.ObserveEventsDropped(len(batch))

	names := make([]string, 0, len(batch))
	for _, e := range batch {
		names = append(names, e.Name)
	}
	d.logger.WarnContext(ctx, "dropping events",
		slog.Any("events", names),
		logger.Attempt(attempts),
		logger.Error(err),
	)
	return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, attempts, err)
}

func retryable(err error) bool {
	return errors.Is(err, api.ErrTransport) || errors.Is(err, api.ErrHTTPStatus)
}
