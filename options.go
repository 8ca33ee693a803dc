package parcelvoy

import (
	"log/slog"
	"net/http"
	"runtime"

	"go.opentelemetry.io/otel/trace"

	"github.com/parcelvoy/go-sdk/pkg/events"
	"github.com/parcelvoy/go-sdk/pkg/inapp"
	"github.com/parcelvoy/go-sdk/pkg/metrics"
	"github.com/parcelvoy/go-sdk/pkg/storage"
)

// DeviceInfo describes the device sent with Register.
type DeviceInfo struct {
	OS         string
	OSVersion  string
	Model      string
	AppBuild   string
	AppVersion string
}

// DefaultDeviceInfo describes the running process.
func DefaultDeviceInfo() DeviceInfo {
	return DeviceInfo{
		OS:    runtime.GOOS,
		Model: runtime.GOARCH,
	}
}

// Option configures a Client.
type Option func(*options)

type options struct {
	store          storage.Store
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracerProvider trace.TracerProvider
	delegate       inapp.Delegate
	device         DeviceInfo
	backoff        events.BackoffStrategy
}

// WithStore persists the anonymous and device ids. Defaults to an in-memory
// store, which forgets them when the process exits.
func WithStore(s storage.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. By default a JSON logger on stderr is built
// from the config, at debug level when Config.Debug is set.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records API, event and in-app metrics. Register the
// collectors with your registry yourself.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider sets the OpenTelemetry provider for API client spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithDelegate sets the in-app notification hooks.
func WithDelegate(d inapp.Delegate) Option {
	return func(o *options) { o.delegate = d }
}

// WithDeviceInfo overrides DefaultDeviceInfo.
func WithDeviceInfo(d DeviceInfo) Option {
	return func(o *options) { o.device = d }
}

// WithEventBackoff delays event retries. Retries are immediate by default.
func WithEventBackoff(b events.BackoffStrategy) Option {
	return func(o *options) { o.backoff = b }
}
