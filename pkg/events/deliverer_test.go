package events_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/apitest"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/events"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/metrics"
)

const eventsPath = "/api/client/events"

var batch = []api.Event{{
	Name:        "purchase",
	AnonymousID: "anon-1",
	ExternalID:  "user-1",
	Properties:  map[string]any{"amount": 10.5},
}}

func setup(t *testing.T, opts ...events.Option) (*apitest.Server, *dispatch.Queue, *events.Deliverer) {
	t.Helper()

	srv := apitest.New(t)
	client, err := api.New(srv.Config(t), api.WithLogger(logger.Discard()))
	require.NoError(t, err)

	queue := dispatch.New(dispatch.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = queue.Close(context.Background()) })

	opts = append([]events.Option{events.WithLogger(logger.Discard())}, opts...)
	return srv, queue, events.New(client, queue, opts...)
}

func TestDeliver_Success(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t)
	require.NoError(t, d.Deliver(context.Background(), batch))

	reqs := srv.Requests(http.MethodPost, eventsPath)
	require.Len(t, reqs, 1)

	var got []map[string]any
	require.NoError(t, reqs[0].JSON(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "purchase", got[0]["name"])
	assert.Equal(t, map[string]any{"amount": 10.5}, got[0]["properties"])
}

func TestDeliver_RetriesThreeTimesThenDrops(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t)
	srv.Fail(http.MethodPost, eventsPath, http.StatusServiceUnavailable, -1)

	err := d.Deliver(context.Background(), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, events.ErrDeliveryFailed)
	assert.ErrorIs(t, err, api.ErrHTTPStatus)
	assert.Equal(t, 4, srv.Count(http.MethodPost, eventsPath))

	reqs := srv.Requests(http.MethodPost, eventsPath)
	for _, r := range reqs[1:] {
		assert.Equal(t, reqs[0].Body, r.Body, "retries resend the identical payload")
	}
}

func TestDeliver_RecoversWithinBudget(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t)
	srv.Fail(http.MethodPost, eventsPath, http.StatusInternalServerError, 3)

	require.NoError(t, d.Deliver(context.Background(), batch))
	assert.Equal(t, 4, srv.Count(http.MethodPost, eventsPath))
}

func TestDeliver_CustomRetries(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t, events.WithRetries(0))
	srv.Fail(http.MethodPost, eventsPath, http.StatusInternalServerError, -1)

	require.Error(t, d.Deliver(context.Background(), batch))
	assert.Equal(t, 1, srv.Count(http.MethodPost, eventsPath))
}

func TestDeliver_NotRetryableStopsEarly(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t)
	bad := []api.Event{{Name: "bad", Properties: map[string]any{"ch": make(chan int)}}}

	err := d.Deliver(context.Background(), bad)
	assert.ErrorIs(t, err, api.ErrEncode)
	assert.Zero(t, srv.Count(http.MethodPost, eventsPath))
}

func TestDeliver_EmptyBatch(t *testing.T) {
	t.Parallel()

	_, _, d := setup(t)
	assert.ErrorIs(t, d.Deliver(context.Background(), nil), events.ErrNoEvents)
}

func TestDeliver_BackoffRespectsContext(t *testing.T) {
	t.Parallel()

	srv, _, d := setup(t, events.WithBackoff(events.FixedBackoff{Interval: time.Hour}))
	srv.Fail(http.MethodPost, eventsPath, http.StatusInternalServerError, -1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Deliver(ctx, batch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, srv.Count(http.MethodPost, eventsPath))
}

func TestTrack_IsFireAndForget(t *testing.T) {
	t.Parallel()

	srv, queue, d := setup(t)
	srv.Fail(http.MethodPost, eventsPath, http.StatusInternalServerError, -1)

	task := d.Track(context.Background(), batch...)
	require.NoError(t, queue.Flush(context.Background()))

	assert.True(t, task.IsComplete())
	assert.Equal(t, 4, srv.Count(http.MethodPost, eventsPath))
}

func TestDeliver_Metrics(t *testing.T) {
	t.Parallel()

	m := metrics.New("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	srv, _, d := setup(t, events.WithMetrics(m))
	srv.Fail(http.MethodPost, eventsPath, http.StatusInternalServerError, -1)

	require.Error(t, d.Deliver(context.Background(), batch))

	families, err := reg.Gather()
	require.NoError(t, err)
	var dropped float64
	for _, f := range families {
		if f.GetName() == "test_parcelvoy_events_dropped_total" {
			dropped = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), dropped)

	n, err := testutil.GatherAndCount(reg, "test_parcelvoy_event_delivery_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the failure series exists")
}

func TestBackoffStrategies(t *testing.T) {
	t.Parallel()

	assert.Zero(t, events.NoBackoff{}.NextInterval(2))
	assert.Equal(t, time.Second, events.FixedBackoff{Interval: time.Second}.NextInterval(3))
	assert.Zero(t, events.FixedBackoff{Interval: time.Second}.NextInterval(0))

	exp := events.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 100*time.Millisecond, exp.NextInterval(1))
	assert.Equal(t, 400*time.Millisecond, exp.NextInterval(3))
	assert.Equal(t, time.Second, exp.NextInterval(10))
}
