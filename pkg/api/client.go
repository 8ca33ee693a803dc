package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/parcelvoy/go-sdk/pkg/config"
	"github.com/parcelvoy/go-sdk/pkg/logger"
	"github.com/parcelvoy/go-sdk/pkg/metrics"
)

// Prefix is appended to the configured endpoint for every relative path.
const Prefix = "/api/client/"

const userAgent = "parcelvoy-go/" + SDKVersion

// SDKVersion is reported in device registrations and the User-Agent header.
const SDKVersion = "1.0.0"

// Client executes authenticated requests against one Parcelvoy instance.
// Zero value is not usable; use New. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracerProvider trace.TracerProvider
}

// WithHTTPClient replaces the default HTTP client. Useful for custom
// transports, proxies, or testing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger. Bodies are only logged when Config.Debug is set.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithTracerProvider sets the OpenTelemetry provider for client spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// New creates a client for cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	log := o.logger.With(logger.Component("api"))
	if cfg.Debug {
		// Copy so the caller's client is left untouched.
		wrapped := *httpClient
		wrapped.Transport = &debugTransport{next: httpClient.Transport, logger: log}
		httpClient = &wrapped
	}

	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URLEndpoint, "/") + Prefix,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  log,
		metrics: o.metrics,
		tracer:  tp.Tracer("github.com/parcelvoy/go-sdk/pkg/api"),
	}, nil
}

// BaseURL returns the resolved API root, ending in Prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsSuccess reports whether status is in the accepted band, 200 through 298.
// 299 is excluded, matching the half-open range the backend contract uses.
func IsSuccess(status int) bool {
	return status >= 200 && status < 299
}
