package inapp

import (
	"context"
	"sync"

	"github.com/parcelvoy/go-sdk/pkg/content"
	"github.com/parcelvoy/go-sdk/pkg/logger"
)

// Target is the host's UI owner. Implementations are typically pointers so
// UnregisterTarget can match them.
type Target interface {
	// Post runs fn on the context that owns presentation.
	Post(fn func())
	// Present shows s. It is only called from inside Post.
	Present(s *Surface) error
	// DismissCurrent closes whatever surface is on screen. It must be a
	// no-op when nothing is shown. Only called from inside Post.
	DismissCurrent()
}

// Surface is one presented notification. The target reports user
// interaction back through it.
type Surface struct {
	Notification content.Notification
	DarkMode     bool

	pipeline *Pipeline
	target   Target
	shown    sync.Once
	closed   sync.Once
}

// Shown reports that the surface became visible. Only the first call counts.
func (s *Surface) Shown() {
	s.shown.Do(func() {
		if h := s.pipeline.delegate.OnShown; h != nil {
			h(s.Notification)
		}
	})
}

// Act processes a user action. Dismiss consumes the notification in the
// background. Every action closes the surface and is then forwarded to
// Delegate.Handle.
func (s *Surface) Act(ctx context.Context, action Action, params map[string]any) {
	p := s.pipeline
	p.logger.DebugContext(ctx, "surface action",
		logger.NotificationID(s.Notification.ID),
		logger.Event(string(action)),
	)

	if action == ActionDismiss {
		n := s.Notification
		p.queue.Submit(ctx, "consume", func(ctx context.Context) error {
			return p.Consume(ctx, n)
		})
	}
	if h := p.delegate.Handle; h != nil {
		h(ctx, action, params, s.Notification)
	}
	s.Close()
}

// HandleBridgeURL runs the action behind a parcelvoy:// navigation. It
// returns false when raw is an ordinary link the surface should open itself.
func (s *Surface) HandleBridgeURL(ctx context.Context, raw string) bool {
	action, params, ok := ParseBridgeURL(raw)
	if !ok {
		return false
	}
	s.Act(ctx, action, params)
	return true
}

// HandleBridgeMessage runs the action behind a page script postMessage call.
func (s *Surface) HandleBridgeMessage(ctx context.Context, name, payload string) bool {
	action, params, ok := ParseBridgeMessage(name, payload)
	if !ok {
		s.pipeline.logger.WarnContext(ctx, "unknown bridge message", logger.Event(name))
		return false
	}
	s.Act(ctx, action, params)
	return true
}

// Close dismisses the surface if it is still the current one.
func (s *Surface) Close() {
	s.closed.Do(func() {
		if s.pipeline.release(s) {
			s.target.Post(s.target.DismissCurrent)
		}
	})
}
