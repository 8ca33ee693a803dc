package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/parcelvoy/go-sdk/pkg/logger"
)

const maxErrorBody = 64 * 1024

// CallOption adjusts a single request.
type CallOption func(*callOptions)

type callOptions struct {
	absolute       bool
	allowAnonymous bool
	headers        map[string]string
}

// WithAbsoluteURL treats the path as a complete URL instead of joining it to
// the API root.
func WithAbsoluteURL() CallOption {
	return func(o *callOptions) { o.absolute = true }
}

// AllowAnonymous lets a user-scoped Get run without an external id. Only the
// anonymous id header is sent in that case.
func AllowAnonymous() CallOption {
	return func(o *callOptions) { o.allowAnonymous = true }
}

// WithHeader adds a request header.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if key == "" || value == "" {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// Get fetches a user-scoped resource. user.ExternalID must be set unless
// AllowAnonymous is passed; this is checked before any I/O.
func Get[T any](ctx context.Context, c *Client, path string, user Alias, opts ...CallOption) (T, error) {
	o := applyCallOptions(opts)
	if user.ExternalID == "" && !o.allowAnonymous {
		var zero T
		return zero, fmt.Errorf("%w: external id is required for GET %s", ErrPrecondition, path)
	}

	o.set("x-anonymous-id", user.AnonymousID)
	o.set("x-external-id", user.ExternalID)
	return execute[T](ctx, c, http.MethodGet, path, nil, o)
}

// Post sends body as JSON and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (T, error) {
	return execute[T](ctx, c, http.MethodPost, path, body, applyCallOptions(opts))
}

// Put sends body as JSON and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (T, error) {
	return execute[T](ctx, c, http.MethodPut, path, body, applyCallOptions(opts))
}

func applyCallOptions(opts []CallOption) *callOptions {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *callOptions) set(key, value string) {
	WithHeader(key, value)(o)
}

func (c *Client) resolve(path string, absolute bool) (string, error) {
	raw := path
	if !absolute {
		raw = c.baseURL + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return u.String(), nil
}

// endpointLabel keeps metric and span cardinality low: "notifications/42"
// becomes "notifications" and absolute URLs become "redirect".
func endpointLabel(path string, absolute bool) string {
	if absolute {
		return "redirect"
	}
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

func execute[T any](ctx context.Context, c *Client, method, path string, body any, o *callOptions) (out T, err error) {
	endpoint := endpointLabel(path, o.absolute)

	target, err := c.resolve(path, o.absolute)
	if err != nil {
		return out, err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		payload = bytes.NewReader(data)
	}

	ctx, span := c.tracer.Start(ctx, "parcelvoy "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("parcelvoy.endpoint", endpoint),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		c.finish(ctx, span, method, endpoint, 0, err, time.Since(start))
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !IsSuccess(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = &StatusError{StatusCode: resp.StatusCode, Body: sanitizeBody(raw)}
		c.finish(ctx, span, method, endpoint, resp.StatusCode, err, time.Since(start))
		return out, err
	}

	if _, ok := any(out).(Empty); ok {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		c.finish(ctx, span, method, endpoint, resp.StatusCode, nil, time.Since(start))
		return out, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("%w: %s %s: %w", ErrDecode, method, endpoint, err)
		c.finish(ctx, span, method, endpoint, resp.StatusCode, err, time.Since(start))
		var zero T
		return zero, err
	}

	c.finish(ctx, span, method, endpoint, resp.StatusCode, nil, time.Since(start))
	return out, nil
}

func (c *Client) finish(ctx context.Context, span trace.Span, method, endpoint string, status int, err error, d time.Duration) {
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	c.metrics.ObserveRequest(method, endpoint, status, err, d)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.LogAttrs(ctx, slog.LevelDebug, "parcelvoy request failed",
			logger.Method(method),
			logger.Path(endpoint),
			logger.StatusCode(status),
			logger.Duration(d),
			logger.Error(err),
		)
		return
	}
	span.SetStatus(codes.Ok, "")
}

// sanitizeBody flattens a response body into one bounded line for errors and logs.
func sanitizeBody(raw []byte) string {
	return clip(strings.ReplaceAll(strings.TrimSpace(string(raw)), "\n", " "), 200)
}

// clip shortens s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
