package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

func (f Format) valid() bool {
	return f == FormatJSON || f == FormatText
}

// ParseFormat maps a config value to a Format. "" means FormatJSON.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSON, nil
	}
	if f := Format(s); f.valid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown log format %q, want %q or %q", s, FormatJSON, FormatText)
}

type settings struct {
	level  slog.Level
	format Format
	out    io.Writer
	attrs  []slog.Attr
	fields []contextField
}

// Option configures New.
type Option func(*settings)

// WithLevel sets the minimum level. Defaults to info.
func WithLevel(l slog.Level) Option {
	return func(s *settings) { s.level = l }
}

// WithFormat sets the encoding. Panics for invalid formats; use ParseFormat
// on untrusted input.
func WithFormat(f Format) Option {
	if !f.valid() {
		panic(fmt.Sprintf("logger: unknown format %q", f))
	}
	return func(s *settings) { s.format = f }
}

// WithDebug switches to debug level when on. The API client logs request and
// response bodies at this level.
func WithDebug(on bool) Option {
	return func(s *settings) {
		if on {
			s.level = slog.LevelDebug
		}
	}
}

// WithOutput redirects records from stderr to w.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithAttr attaches attrs to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(s *settings) { s.attrs = append(s.attrs, attrs...) }
}

// WithContextValue logs ctx.Value(key) under name on every record whose
// context carries it. The notification pipeline stores its cycle id this way.
func WithContextValue(name string, key any) Option {
	return func(s *settings) {
		if name != "" && key != nil {
			s.fields = append(s.fields, contextField{name: name, key: key})
		}
	}
}

// New builds a logger writing to stderr in JSON at info level unless told
// otherwise.
func New(opts ...Option) *slog.Logger {
	s := &settings{level: slog.LevelInfo, format: FormatJSON, out: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}

	hopts := &slog.HandlerOptions{Level: s.level}
	var h slog.Handler = slog.NewJSONHandler(s.out, hopts)
	if s.format == FormatText {
		h = slog.NewTextHandler(s.out, hopts)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	if len(s.fields) > 0 {
		h = contextHandler{Handler: h, fields: s.fields}
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
