package logger

import (
	"context"
	"log/slog"
)

// contextField logs ctx.Value(key) under name when present.
type contextField struct {
	name string
	key  any
}

// contextHandler copies selected context values onto every record before
// passing it on. Lookups happen only for records that are enabled.
type contextHandler struct {
	slog.Handler
	fields []contextField
}

func (h contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, f := range h.fields {
			if v := ctx.Value(f.key); v != nil {
				rec.AddAttrs(slog.Any(f.name, v))
			}
		}
	}
	return h.Handler.Handle(ctx, rec)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs), fields: h.fields}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name), fields: h.fields}
}
