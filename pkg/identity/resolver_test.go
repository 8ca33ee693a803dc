package identity_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/apitest"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/identity"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/storage"
)

const (
	aliasPath    = "/api/client/alias"
	identifyPath = "/api/client/identify"
)

type fixture struct {
	srv      *apitest.Server
	store    *storage.MemoryStore
	queue    *dispatch.Queue
	resolver *identity.Resolver
}

func newFixture(t *testing.T, opts ...identity.Option) *fixture {
	t.Helper()

	srv := apitest.New(t)
	client, err := api.New(srv.Config(t), api.WithLogger(logger.Discard()))
	require.NoError(t, err)

	queue := dispatch.New(dispatch.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = queue.Close(context.Background()) })

	store := storage.NewMemoryStore()
	opts = append([]identity.Option{identity.WithLogger(logger.Discard())}, opts...)

	return &fixture{
		srv:      srv,
		store:    store,
		queue:    queue,
		resolver: identity.New(store, client, queue, opts...),
	}
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, f.queue.Flush(context.Background()))
}

func TestAnonymousID_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.resolver.AnonymousID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	for range 5 {
		again, err := f.resolver.AnonymousID(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	stored, found, err := f.store.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first, stored)

	require.NoError(t, f.resolver.Reset(ctx))
	_, found, err = f.store.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.False(t, found)

	fresh, err := f.resolver.AnonymousID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
}

func TestAnonymousID_LoadsPersisted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, storage.KeyAnonymousID, "persisted"))

	id, err := f.resolver.AnonymousID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", id)
}

func TestAnonymousID_ConcurrentCallersShareOneID(t *testing.T) {
	t.Parallel()

	var generated atomic.Int32
	f := newFixture(t, identity.WithIDGenerator(func() string {
		return fmt.Sprintf("id-%d", generated.Add(1))
	}))

	ids := make([]string, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.resolver.AnonymousID(context.Background())
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), generated.Load())
	for _, id := range ids {
		assert.Equal(t, "id-1", id)
	}
}

func TestDeviceID_SurvivesReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	device, err := f.resolver.DeviceID(ctx)
	require.NoError(t, err)
	anon, err := f.resolver.AnonymousID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, anon, device)

	require.NoError(t, f.resolver.Reset(ctx))

	again, err := f.resolver.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, device, again)
}

func TestIdentify_AliasesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-1"}))
	f.flush(t)
	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-1", Email: "a@example.com"}))
	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-2"}))
	f.flush(t)

	assert.Equal(t, 1, f.srv.Count(http.MethodPost, aliasPath))
	assert.Equal(t, 3, f.srv.Count(http.MethodPost, identifyPath))
	assert.Equal(t, "user-2", f.resolver.ExternalID())

	anon, err := f.resolver.AnonymousID(ctx)
	require.NoError(t, err)

	var alias api.Alias
	require.NoError(t, f.srv.Requests(http.MethodPost, aliasPath)[0].JSON(&alias))
	assert.Equal(t, api.Alias{AnonymousID: anon, ExternalID: "user-1"}, alias)
}

func TestIdentify_AnonymousDoesNotAlias(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{Traits: map[string]any{"plan": "free"}}))
	f.flush(t)

	assert.Zero(t, f.srv.Count(http.MethodPost, aliasPath))
	require.Equal(t, 1, f.srv.Count(http.MethodPost, identifyPath))

	var body map[string]any
	require.NoError(t, f.srv.Requests(http.MethodPost, identifyPath)[0].JSON(&body))
	assert.NotEmpty(t, body["anonymous_id"])
	assert.Equal(t, map[string]any{"plan": "free"}, body["data"])
}

func TestIdentify_EmptyExternalIDClearsRecorded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-1"}))
	require.NoError(t, f.resolver.Identify(ctx, api.Identity{Email: "a@example.com"}))
	assert.Empty(t, f.resolver.ExternalID())

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-2"}))
	f.flush(t)

	assert.Equal(t, "user-2", f.resolver.ExternalID())
	require.Equal(t, 2, f.srv.Count(http.MethodPost, aliasPath))

	var aliases []api.Alias
	for _, req := range f.srv.Requests(http.MethodPost, aliasPath) {
		var a api.Alias
		require.NoError(t, req.JSON(&a))
		aliases = append(aliases, a)
	}
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, []string{aliases[0].ExternalID, aliases[1].ExternalID})
}

func TestIdentify_AliasesAgainAfterReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-1"}))
	require.NoError(t, f.resolver.Reset(ctx))
	assert.Empty(t, f.resolver.ExternalID())

	require.NoError(t, f.resolver.Identify(ctx, api.Identity{ExternalID: "user-2"}))
	f.flush(t)

	assert.Equal(t, 2, f.srv.Count(http.MethodPost, aliasPath))
}

func TestIdentify_SetExternalIDSuppressesAlias(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.resolver.SetExternalID("managed")

	require.NoError(t, f.resolver.Identify(context.Background(), api.Identity{ExternalID: "managed"}))
	f.flush(t)

	assert.Zero(t, f.srv.Count(http.MethodPost, aliasPath))
	assert.Equal(t, 1, f.srv.Count(http.MethodPost, identifyPath))
}

func TestIdentify_NetworkFailureIsNotReturned(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.srv.Fail(http.MethodPost, identifyPath, http.StatusInternalServerError, -1)

	require.NoError(t, f.resolver.Identify(context.Background(), api.Identity{ExternalID: "user-1"}))
	f.flush(t)
	assert.Equal(t, 1, f.srv.Count(http.MethodPost, identifyPath))
}

func TestAlias(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Alias(ctx, "anon", "")
	require.ErrorIs(t, err, identity.ErrExternalID)

	task, err := f.resolver.Alias(ctx, "", "user-9")
	require.NoError(t, err)
	require.NoError(t, task.Await(ctx))

	assert.Equal(t, "user-9", f.resolver.ExternalID())
	user, err := f.resolver.User(ctx)
	require.NoError(t, err)

	var alias api.Alias
	require.NoError(t, f.srv.Requests(http.MethodPost, aliasPath)[0].JSON(&alias))
	assert.Equal(t, user, alias)
}

type failingStore struct{ storage.Store }

var errBroken = errors.New("broken")

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errBroken }

func TestAnonymousID_StoreFailure(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	client, err := api.New(srv.Config(t))
	require.NoError(t, err)
	queue := dispatch.New()
	t.Cleanup(func() { _ = queue.Close(context.Background()) })

	r := identity.New(failingStore{storage.NewMemoryStore()}, client, queue, identity.WithLogger(logger.Discard()))

	_, err = r.AnonymousID(context.Background())
	assert.ErrorIs(t, err, identity.ErrStore)
	assert.ErrorIs(t, err, errBroken)

	err = r.Identify(context.Background(), api.Identity{ExternalID: "x"})
	assert.ErrorIs(t, err, identity.ErrStore)
	assert.Zero(t, srv.Count("", ""))
}
