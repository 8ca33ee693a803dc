package deeplink

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/logger"
)

// RedirectParam is the query parameter carrying the destination.
const RedirectParam = "r"

// IsTracked reports whether u is a click-tracked link.
func IsTracked(u *url.URL) bool {
	if u == nil || !u.Query().Has(RedirectParam) {
		return false
	}
	return strings.HasSuffix(u.Path, "/c") || strings.Contains(u.Path, "/c/")
}

// Destination returns the decoded r parameter of a tracked link.
func Destination(u *url.URL) (*url.URL, bool) {
	if !IsTracked(u) {
		return nil, false
	}
	raw := u.Query().Get(RedirectParam)
	if raw == "" {
		return nil, false
	}
	dest, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return dest, true
}

// UserSource supplies identity headers for click registration.
type UserSource interface {
	User(ctx context.Context) (api.Alias, error)
}

// Opener opens a destination, e.g. by handing it to the OS.
type Opener func(ctx context.Context, dest *url.URL) error

// Resolver unwraps tracked links and registers clicks.
type Resolver struct {
	client *api.Client
	user   UserSource
	queue  *dispatch.Queue
	logger *slog.Logger
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

// New creates a resolver.
func New(client *api.Client, user UserSource, queue *dispatch.Queue, opts ...Option) *Resolver {
	r := &Resolver{client: client, user: user, queue: queue, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("deeplink"))
	return r
}

// Resolve submits the click registration for every tracked link and returns
// its destination. Nothing is sent for untracked links. ok is false when u
// is untracked or its r parameter is empty or unparsable.
func (r *Resolver) Resolve(ctx context.Context, u *url.URL) (dest *url.URL, ok bool) {
	if !IsTracked(u) {
		return nil, false
	}
	r.registerClick(ctx, u.String())
	return Destination(u)
}

// Handle resolves u and passes the destination, when there is one, to open.
// It reports whether u was a tracked link; open errors are logged.
func (r *Resolver) Handle(ctx context.Context, u *url.URL, open Opener) bool {
	if !IsTracked(u) {
		return false
	}
	dest, ok := r.Resolve(ctx, u)
	if ok && open != nil {
		if err := open(ctx, dest); err != nil {
			r.logger.WarnContext(ctx, "failed to open deep link destination",
				logger.Path(dest.String()),
				logger.Error(err),
			)
		}
	}
	return true
}

func (r *Resolver) registerClick(ctx context.Context, wrapper string) *dispatch.Task {
	return r.queue.Submit(ctx, "register click", func(ctx context.Context) error {
		user, err := r.user.User(ctx)
		if err != nil {
			return err
		}
		_, err = api.Get[api.Empty](ctx, r.client, wrapper, user, api.WithAbsoluteURL(), api.AllowAnonymous())
		if err != nil {
			r.logger.DebugContext(ctx, "click registration failed",
				logger.Path(wrapper),
				logger.Error(err),
			)
		}
		return err
	})
}
