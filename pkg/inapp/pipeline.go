package inapp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/parcelvoy/go-sdk/pkg/api"
	"github.com/parcelvoy/go-sdk/pkg/content"
	"github.com/parcelvoy/go-sdk/pkg/dispatch"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/metrics"
)

// UserSource supplies the identity proof for user-scoped calls.
type UserSource interface {
	User(ctx context.Context) (api.Alias, error)
}

type cycleIDKey struct{}

// CycleIDKey is the context key under which each cycle stores its id. Pass
// it to logger.WithContextValue to tag log records.
var CycleIDKey = cycleIDKey{}

// CycleID returns the cycle id carried by ctx, if any.
func CycleID(ctx context.Context) string {
	id, _ := ctx.Value(CycleIDKey).(string)
	return id
}

// Pipeline fetches notifications and acts on the delegate's decisions.
type Pipeline struct {
	client   *api.Client
	user     UserSource
	queue    *dispatch.Queue
	delegate Delegate
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	onState  func(from, to State)

	autoShown atomic.Bool

	mu      sync.Mutex
	skipped map[int64]struct{}
	target  Target
	current *Surface
	state   State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDelegate sets the hooks.
func WithDelegate(d Delegate) Option {
	return func(p *Pipeline) { p.delegate = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records decisions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithStateObserver is called on every state change of every cycle.
func WithStateObserver(fn func(from, to State)) Option {
	return func(p *Pipeline) { p.onState = fn }
}

// New creates a pipeline.
func New(client *api.Client, user UserSource, queue *dispatch.Queue, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:  client,
		user:    user,
		queue:   queue,
		logger:  slog.Default(),
		now:     time.Now,
		skipped: make(map[int64]struct{}),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("inapp"))
	return p
}

// Delegate returns the configured hooks.
func (p *Pipeline) Delegate() Delegate {
	return p.delegate
}

// State returns the state of the most recently updated cycle.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsSkipped reports whether id is in the skip set.
func (p *Pipeline) IsSkipped(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.skipped[id]
	return ok
}

// RegisterTarget makes t the display target. With Delegate.AutoShow set,
// the first registration in the pipeline's lifetime starts a cycle.
func (p *Pipeline) RegisterTarget(ctx context.Context, t Target) {
	if t == nil {
		return
	}
	p.mu.Lock()
	p.target = t
	p.mu.Unlock()

	if p.delegate.AutoShow && p.autoShown.CompareAndSwap(false, true) {
		p.ShowLatest(ctx)
	}
}

// UnregisterTarget forgets t if it is the current target.
func (p *Pipeline) UnregisterTarget(t Target) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target == t {
		p.target = nil
		p.current = nil
	}
}

// Notifications returns the first page of the user's notifications.
func (p *Pipeline) Notifications(ctx context.Context) (api.Page[content.Notification], error) {
	user, err := p.user.User(ctx)
	if err != nil {
		return api.Page[content.Notification]{}, err
	}
	return api.Get[api.Page[content.Notification]](ctx, p.client, "notifications", user)
}

// ShowLatest submits a cycle and returns immediately.
func (p *Pipeline) ShowLatest(ctx context.Context) *dispatch.Task {
	return p.queue.Submit(ctx, "show latest notification", p.Run)
}

// Run executes one cycle synchronously, including chaining. Errors are
// reported to Delegate.OnError and returned.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	ctx = context.WithValue(ctx, CycleIDKey, uuid.NewString())
	m := newMachine(p.observe)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanicked, r)
		}
		_ = m.to(StateIdle)
		if err != nil {
			p.logger.ErrorContext(ctx, "notification cycle failed", logger.Error(err))
			p.reportError(err)
		}
	}()

	return p.run(ctx, m)
}

func (p *Pipeline) run(ctx context.Context, m *machine) error {
	// Ids consumed during this cycle are passed over even if a listing
	// still returns them.
	consumed := make(map[int64]struct{})

	for {
		if err := m.to(StateFetching); err != nil {
			return err
		}
		n, ok, err := p.nextCandidate(ctx, consumed)
		if err != nil {
			return err
		}
		if !ok {
			p.logger.DebugContext(ctx, "no notification to show")
			return nil
		}

		if err := m.to(StateDeciding); err != nil {
			return err
		}
		if p.delegate.OnNew == nil {
			p.metrics.ObserveDecision("none")
			p.logger.DebugContext(ctx, "no delegate to decide on notification", logger.NotificationID(n.ID))
			return nil
		}
		decision := p.delegate.OnNew(ctx, n)
		p.metrics.ObserveDecision(decision.String())

		switch decision {
		case Show:
			if err := m.to(StateShowing); err != nil {
				return err
			}
			if err := p.show(ctx, n); err != nil {
				return err
			}
			if !n.ReadOnShow() {
				return nil
			}
			fallthrough
		case Consume:
			if err := m.to(StateConsuming); err != nil {
				return err
			}
			if err := p.consume(ctx, n); err != nil {
				return err
			}
			consumed[n.ID] = struct{}{}
		case Skip:
			if err := m.to(StateSkipping); err != nil {
				return err
			}
			p.skip(n.ID)
		default:
			return fmt.Errorf("%w: %v", ErrUnknownDecision, decision)
		}
	}
}

func (p *Pipeline) nextCandidate(ctx context.Context, consumed map[int64]struct{}) (content.Notification, bool, error) {
	page, err := p.Notifications(ctx)
	if err != nil {
		return content.Notification{}, false, err
	}

	now := p.now()
	for _, n := range page.Results {
		if _, ok := consumed[n.ID]; ok || p.IsSkipped(n.ID) {
			continue
		}
		if n.IsExpired(now) {
			p.logger.DebugContext(ctx, "passing over expired notification", logger.NotificationID(n.ID))
			continue
		}
		return n, true, nil
	}
	return content.Notification{}, false, nil
}

func (p *Pipeline) skip(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped[id] = struct{}{}
}

// show presents n on the target's UI context and waits for the handoff.
func (p *Pipeline) show(ctx context.Context, n content.Notification) error {
	p.mu.Lock()
	target := p.target
	p.mu.Unlock()
	if target == nil {
		return ErrNoDisplayTarget
	}

	s := &Surface{
		Notification: n,
		DarkMode:     p.delegate.DarkMode,
		pipeline:     p,
		target:       target,
	}

	done := make(chan error, 1)
	target.Post(func() {
		target.DismissCurrent()
		if err := target.Present(s); err != nil {
			done <- err
			return
		}
		p.mu.Lock()
		p.current = s
		p.mu.Unlock()
		done <- nil
	})

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("present notification %d: %w", n.ID, err)
		}
		p.logger.InfoContext(ctx, "showing in-app notification", logger.NotificationID(n.ID))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release clears s as the current surface. It reports whether s was current.
func (p *Pipeline) release(s *Surface) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != s {
		return false
	}
	p.current = nil
	return true
}

// Current returns the surface on screen, or nil.
func (p *Pipeline) Current() *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Dismiss closes the current surface without consuming it.
func (p *Pipeline) Dismiss() {
	if s := p.Current(); s != nil {
		s.Close()
	}
}

// ConsumeOption adjusts Consume.
type ConsumeOption func(*consumeOptions)

type consumeOptions struct {
	chain bool
}

// WithoutChaining stops Consume from starting a new cycle on success.
func WithoutChaining() ConsumeOption {
	return func(o *consumeOptions) { o.chain = false }
}

// Consume marks n read. On success a new cycle is submitted unless
// WithoutChaining is given. Failures go to Delegate.OnError and are returned.
func (p *Pipeline) Consume(ctx context.Context, n content.Notification, opts ...ConsumeOption) error {
	o := &consumeOptions{chain: true}
	for _, opt := range opts {
		opt(o)
	}

	if err := p.consume(ctx, n); err != nil {
		p.reportError(err)
		return err
	}
	if o.chain {
		p.ShowLatest(ctx)
	}
	return nil
}

func (p *Pipeline) consume(ctx context.Context, n content.Notification) error {
	user, err := p.user.User(ctx)
	if err != nil {
		return err
	}
	_, err = api.Put[api.Empty](ctx, p.client, "notifications/"+strconv.FormatInt(n.ID, 10), user)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to consume notification",
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
		return fmt.Errorf("consume notification %d: %w", n.ID, err)
	}
	p.logger.InfoContext(ctx, "notification consumed", logger.NotificationID(n.ID))
	return nil
}

func (p *Pipeline) observe(from, to State) {
	p.mu.Lock()
	p.state = to
	p.mu.Unlock()
	if p.onState != nil {
		p.onState(from, to)
	}
}

func (p *Pipeline) reportError(err error) {
	if h := p.delegate.OnError; h != nil {
		h(err)
	}
}
