// Package storage persists the SDK's small amount of device state: the
// anonymous id and the device id.
//
// Store is the collaborator interface; three implementations are provided:
//
//   - MemoryStore keeps values for the process lifetime. Useful in tests and
//     for hosts that manage identity themselves.
//   - FileStore keeps values in a YAML file, rewritten atomically on every
//     change. Suitable for CLIs and desktop agents.
//   - RedisStore keeps values under a key prefix in Redis, for server-side
//     hosts acting on behalf of many devices.
//
// Connect to Redis with retries:
//
//	client, err := storage.ConnectRedis(ctx, storage.RedisConfig{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	store := storage.NewRedisStore(client, storage.WithKeyPrefix("device:42:"))
package storage
