package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/storage"
)

// Resolver tracks who the current user is. Safe for concurrent use.
type Resolver struct {
	store  storage.Store
	client *api.Client
	queue  *dispatch.Queue
	logger *slog.Logger
	newID  func() string

	mu          sync.Mutex
	anonymousID string
	deviceID    string
	externalID  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator replaces uuid.NewString for anonymous and device ids.
func WithIDGenerator(fn func() string) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New creates a resolver. Calls are sent through client on queue.
func New(store storage.Store, client *api.Client, queue *dispatch.Queue, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		client: client,
		queue:  queue,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("identity"))
	return r
}

// AnonymousID returns the persisted anonymous id, creating and persisting a
// new one on first use.
func (r *Resolver) AnonymousID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anonymousIDLocked(ctx)
}

func (r *Resolver) anonymousIDLocked(ctx context.Context) (string, error) {
	if r.anonymousID != "" {
		return r.anonymousID, nil
	}
	id, err := r.loadOrCreate(ctx, storage.KeyAnonymousID)
	if err != nil {
		return "", err
	}
	r.anonymousID = id
	return id, nil
}

// DeviceID returns the persisted device id, creating one on first use. It
// survives Reset.
func (r *Resolver) DeviceID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deviceID != "" {
		return r.deviceID, nil
	}
	id, err := r.loadOrCreate(ctx, storage.KeyDeviceID)
	if err != nil {
		return "", err
	}
	r.deviceID = id
	return id, nil
}

func (r *Resolver) loadOrCreate(ctx context.Context, key string) (string, error) {
	v, found, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}
	if found && v != "" {
		return v, nil
	}

	v = r.newID()
	if err := r.store.Set(ctx, key, v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}
	r.logger.DebugContext(ctx, "generated new id", slog.String("key", key))
	return v, nil
}

// ExternalID returns the recorded external id, or "" if none.
func (r *Resolver) ExternalID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.externalID
}

// SetExternalID records id without any network call. Use it when the host
// manages identities outside identify and alias.
func (r *Resolver) SetExternalID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.externalID = id
}

// User returns the identity proof used for user-scoped calls.
func (r *Resolver) User(ctx context.Context) (api.Alias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	anon, err := r.anonymousIDLocked(ctx)
	if err != nil {
		return api.Alias{}, err
	}
	return api.Alias{AnonymousID: anon, ExternalID: r.externalID}, nil
}

// Identify sends a profile snapshot. When no external id has been recorded
// yet and identity carries one, an alias call is submitted first. The
// recorded id then becomes identity.ExternalID, even when that is empty, so
// a later identify with an id aliases again. An empty identity.AnonymousID
// is filled in.
//
// The returned error only reports local failures; network outcomes are
// logged.
func (r *Resolver) Identify(ctx context.Context, identity api.Identity) error {
	r.mu.Lock()
	if identity.AnonymousID == "" {
		anon, err := r.anonymousIDLocked(ctx)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		identity.AnonymousID = anon
	}
	alias := r.externalID == "" && identity.ExternalID != ""
	r.externalID = identity.ExternalID
	r.mu.Unlock()

	if alias {
		r.submitAlias(ctx, api.Alias{AnonymousID: identity.AnonymousID, ExternalID: identity.ExternalID})
	}

	r.queue.Submit(ctx, "identify", func(ctx context.Context) error {
		_, err := api.Post[api.Empty](ctx, r.client, "identify", identity)
		if err != nil {
			r.logger.WarnContext(ctx, "identify failed",
				logger.AnonymousID(identity.AnonymousID),
				logger.ExternalID(identity.ExternalID),
				logger.Error(err),
			)
		}
		return err
	})
	return nil
}

// Alias binds anonymousID to externalID and records externalID. Identify
// calls it automatically; hosts rarely need it directly.
func (r *Resolver) Alias(ctx context.Context, anonymousID, externalID string) (*dispatch.Task, error) {
	if externalID == "" {
		return nil, ErrExternalID
	}

	r.mu.Lock()
	if anonymousID == "" {
		anon, err := r.anonymousIDLocked(ctx)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		anonymousID = anon
	}
	r.externalID = externalID
	r.mu.Unlock()

	return r.submitAlias(ctx, api.Alias{AnonymousID: anonymousID, ExternalID: externalID}), nil
}

func (r *Resolver) submitAlias(ctx context.Context, alias api.Alias) *dispatch.Task {
	return r.queue.Submit(ctx, "alias", func(ctx context.Context) error {
		_, err := api.Post[api.Empty](ctx, r.client, "alias", alias)
		if err != nil {
			r.logger.WarnContext(ctx, "alias failed",
				logger.AnonymousID(alias.AnonymousID),
				logger.ExternalID(alias.ExternalID),
				logger.Error(err),
			)
		}
		return err
	})
}

// Reset forgets the external id and erases the persisted anonymous id so the
// next use generates a fresh one. The device id is kept.
func (r *Resolver) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.externalID = ""
	r.anonymousID = ""
	if err := r.store.Delete(ctx, storage.KeyAnonymousID); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
