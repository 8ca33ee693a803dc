package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelvoy/go-sdk/pkg/storage"
)

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, storage.KeyAnonymousID, "anon-1"))
	v, found, err := s.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "anon-1", v)

	require.NoError(t, s.Set(ctx, storage.KeyAnonymousID, "anon-2"))
	v, _, err = s.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.Equal(t, "anon-2", v)

	require.NoError(t, s.Set(ctx, storage.KeyDeviceID, "device-1"))
	require.NoError(t, s.Delete(ctx, storage.KeyAnonymousID))
	_, found, err = s.Get(ctx, storage.KeyAnonymousID)
	require.NoError(t, err)
	assert.False(t, found)

	v, found, err = s.Get(ctx, storage.KeyDeviceID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "device-1", v)

	require.NoError(t, s.Delete(ctx, "missing"), "deleting a missing key is not an error")

	assert.ErrorIs(t, s.Set(ctx, "", "x"), storage.ErrEmptyKey)
	_, _, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), storage.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, storage.NewMemoryStore())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	s := storage.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := uuid.NewString()
			assert.NoError(t, s.Set(ctx, key, key))
			_, _, err := s.Get(ctx, key)
			assert.NoError(t, err)
			if i%2 == 0 {
				assert.NoError(t, s.Delete(ctx, key))
			}
		}()
	}
	wg.Wait()
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	exerciseStore(t, storage.NewFileStore(path))
}

func TestFileStore_Persists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	first := storage.NewFileStore(path)
	require.NoError(t, first.Set(ctx, storage.KeyDeviceID, "device-1"))

	second := storage.NewFileStore(path)
	v, found, err := second.Get(ctx, storage.KeyDeviceID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "device-1", v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PARCELVOY_DEVICE_UUID: device-1")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, _, err := storage.NewFileStore(path).Get(context.Background(), storage.KeyAnonymousID)
	assert.ErrorIs(t, err, storage.ErrReadFailed)
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := storage.ConnectRedis(context.Background(), storage.RedisConfig{ConnectionURL: "not-a-url://"})
	assert.ErrorIs(t, err, storage.ErrFailedToParseConnString)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := storage.ConnectRedis(context.Background(), storage.RedisConfig{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, storage.ErrRedisNotReady)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("PARCELVOY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PARCELVOY_TEST_REDIS_URL not set")
	}

	client, err := storage.ConnectRedis(context.Background(), storage.RedisConfig{
		ConnectionURL:  url,
		RetryAttempts:  3,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, storage.NewRedisStore(client, storage.WithKeyPrefix("test:"+uuid.NewString()+":")))
}
