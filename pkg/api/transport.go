package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/parcelvoy/go-sdk/pkg/logger"
)

const maxLoggedBody = 16 * 1024

// debugTransport logs request and response bodies at debug level.
type debugTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	ctx := req.Context()
	var reqBody []byte
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		reqBody = data
		req.Body = io.NopCloser(bytes.NewReader(data))
	}
	t.logger.LogAttrs(ctx, slog.LevelDebug, "--> parcelvoy request",
		logger.Method(req.Method),
		logger.Path(req.URL.String()),
		slog.String("body", truncate(reqBody)),
	)

	resp, err := next.RoundTrip(req)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelDebug, "<-- parcelvoy transport error",
			logger.Path(req.URL.String()),
			logger.Error(err),
		)
		return nil, err
	}

	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	t.logger.LogAttrs(ctx, slog.LevelDebug, "<-- parcelvoy response",
		logger.Path(req.URL.String()),
		logger.StatusCode(resp.StatusCode),
		slog.String("body", truncate(data)),
		logger.Error(readErr),
	)
	return resp, nil
}

func truncate(b []byte) string {
	return clip(string(b), maxLoggedBody)
}
