package parcelvoy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/config"
	"github.com/parcelvoy/go-sdk/pkg/content"
	"github.com/parcelvoy/go-sdk/pkg/deeplink"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/events"
	"github.com/parcelvoy/go-sdk/pkg/identity"
	"github.com/parcelvoy/go-sdk/pkg/inapp"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/push"
	"github.com/parcelvoy/go-sdk/pkg/storage"
)

// ErrEmptyEventName is returned by Track for an empty name.
var ErrEmptyEventName = errors.New("parcelvoy: event name is required")

// Client is the SDK handle. Safe for concurrent use.
type Client struct {
	cfg    config.Config
	logger *slog.Logger
	device DeviceInfo

	api      *api.Client
	queue    *dispatch.Queue
	identity *identity.Resolver
	events   *events.Deliverer
	inapp    *inapp.Pipeline
	links    *deeplink.Resolver
}

// New wires a client for cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{device: DefaultDeviceInfo()}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = storage.NewMemoryStore()
	}
	if o.logger == nil {
		format, err := logger.ParseFormat(cfg.LogFormat)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		o.logger = logger.New(
			logger.WithFormat(format),
			logger.WithDebug(cfg.Debug),
			logger.WithContextValue("cycle_id", inapp.CycleIDKey),
		)
	}

	apiClient, err := api.New(cfg,
		api.WithHTTPClient(o.httpClient),
		api.WithLogger(o.logger),
		api.WithMetrics(o.metrics),
		api.WithTracerProvider(o.tracerProvider),
	)
	if err != nil {
		return nil, err
	}

	queue := dispatch.New(dispatch.WithLimit(cfg.QueueLimit), dispatch.WithLogger(o.logger))
	resolver := identity.New(o.store, apiClient, queue, identity.WithLogger(o.logger))

	return &Client{
		cfg:      cfg,
		logger:   o.logger,
		device:   o.device,
		api:      apiClient,
		queue:    queue,
		identity: resolver,
		events: events.New(apiClient, queue,
			events.WithLogger(o.logger),
			events.WithMetrics(o.metrics),
			events.WithBackoff(o.backoff),
		),
		inapp: inapp.New(apiClient, resolver, queue,
			inapp.WithDelegate(o.delegate),
			inapp.WithLogger(o.logger),
			inapp.WithMetrics(o.metrics),
		),
		links: deeplink.New(apiClient, resolver, queue, deeplink.WithLogger(o.logger)),
	}, nil
}

// Config returns a copy of the configuration.
func (c *Client) Config() config.Config {
	return c.cfg
}

// AnonymousID returns the persisted anonymous id, creating it on first use.
func (c *Client) AnonymousID(ctx context.Context) (string, error) {
	return c.identity.AnonymousID(ctx)
}

// ExternalID returns the known user id, or "".
func (c *Client) ExternalID() string {
	return c.identity.ExternalID()
}

// Identify sends a profile snapshot. The first identify carrying an external
// id also aliases the anonymous user to it. Call it again whenever traits
// change.
func (c *Client) Identify(ctx context.Context, id api.Identity) error {
	return c.identity.Identify(ctx, id)
}

// IdentifyUser is Identify for the common fields.
func (c *Client) IdentifyUser(ctx context.Context, externalID, email, phone string, traits map[string]any) error {
	return c.identity.Identify(ctx, api.Identity{
		ExternalID: externalID,
		Email:      email,
		Phone:      phone,
		Traits:     traits,
	})
}

// Alias binds the anonymous user to externalID. Identify does this
// automatically.
func (c *Client) Alias(ctx context.Context, externalID string) error {
	_, err := c.identity.Alias(ctx, "", externalID)
	return err
}

// SetExternalID records the user id without any network call.
func (c *Client) SetExternalID(id string) {
	c.identity.SetExternalID(id)
}

// Reset forgets the user. Call it on logout.
func (c *Client) Reset(ctx context.Context) error {
	return c.identity.Reset(ctx)
}

// Track records an event for the current user.
func (c *Client) Track(ctx context.Context, name string, properties map[string]any) error {
	if name == "" {
		return ErrEmptyEventName
	}
	user, err := c.identity.User(ctx)
	if err != nil {
		return err
	}
	if properties == nil {
		properties = map[string]any{}
	}
	c.events.Track(ctx, api.Event{
		Name:        name,
		AnonymousID: user.AnonymousID,
		ExternalID:  user.ExternalID,
		Properties:  properties,
	})
	return nil
}

// Register records this device and its push token. token may be empty.
func (c *Client) Register(ctx context.Context, token string) error {
	deviceID, err := c.identity.DeviceID(ctx)
	if err != nil {
		return err
	}
	user, err := c.identity.User(ctx)
	if err != nil {
		return err
	}

	device := api.Device{
		AnonymousID: user.AnonymousID,
		ExternalID:  user.ExternalID,
		DeviceID:    deviceID,
		Token:       token,
		OS:          c.device.OS,
		OSVersion:   c.device.OSVersion,
		Model:       c.device.Model,
		AppBuild:    c.device.AppBuild,
		AppVersion:  c.device.AppVersion,
		SDKVersion:  api.SDKVersion,
	}
	c.queue.Submit(ctx, "register device", func(ctx context.Context) error {
		_, err := api.Post[api.Empty](ctx, c.api, "devices", device)
		if err != nil {
			c.logger.WarnContext(ctx, "device registration failed", logger.Error(err))
		}
		return err
	})
	return nil
}

// Notifications returns the first page of the user's in-app notifications.
func (c *Client) Notifications(ctx context.Context) (api.Page[content.Notification], error) {
	return c.inapp.Notifications(ctx)
}

// ShowLatestNotification starts a fetch-and-decide cycle in the background.
func (c *Client) ShowLatestNotification(ctx context.Context) {
	c.inapp.ShowLatest(ctx)
}

// Consume marks n read and, unless inapp.WithoutChaining is passed, looks
// for the next notification.
func (c *Client) Consume(ctx context.Context, n content.Notification, opts ...inapp.ConsumeOption) error {
	return c.inapp.Consume(ctx, n, opts...)
}

// Dismiss closes the notification on screen without consuming it.
func (c *Client) Dismiss() {
	c.inapp.Dismiss()
}

// RegisterTarget sets the surface that presents notifications.
func (c *Client) RegisterTarget(ctx context.Context, t inapp.Target) {
	c.inapp.RegisterTarget(ctx, t)
}

// UnregisterTarget forgets t.
func (c *Client) UnregisterTarget(t inapp.Target) {
	c.inapp.UnregisterTarget(t)
}

// IsTrackedLink reports whether u is a click-tracked Parcelvoy link.
func (c *Client) IsTrackedLink(u *url.URL) bool {
	return deeplink.IsTracked(u)
}

// URIRedirect returns the destination of a tracked link and reports the
// click in the background. The click is reported for every tracked link; ok
// is false for other links and for tracked links without a usable destination.
func (c *Client) URIRedirect(ctx context.Context, u *url.URL) (dest *url.URL, ok bool) {
	return c.links.Resolve(ctx, u)
}

// Handle opens the destination of a tracked link with open and reports
// the click. It returns false for other links.
func (c *Client) Handle(ctx context.Context, u *url.URL, open deeplink.Opener) bool {
	return c.links.Handle(ctx, u, open)
}

// PushReceived inspects a push data payload. In-app check pushes start a
// notification cycle; the return value tells the host not to display them.
func (c *Client) PushReceived(ctx context.Context, data map[string]string) bool {
	if !push.IsCheckMessagePush(data) {
		return false
	}
	c.inapp.ShowLatest(ctx)
	return true
}

// Flush waits until every submitted call, including chained ones, is done.
func (c *Client) Flush(ctx context.Context) error {
	return c.queue.Flush(ctx)
}

// Close waits for submitted calls to finish, then stops the queue. Calls
// made after Close are dropped.
func (c *Client) Close(ctx context.Context) error {
	return c.queue.Close(ctx)
}
