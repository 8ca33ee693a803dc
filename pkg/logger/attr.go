package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a tracked event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// NotificationID records an in-app notification id.
func NotificationID(id int64) slog.Attr {
	return slog.Int64("notification_id", id)
}

// AnonymousID records the anonymous user id. Empty ids are omitted.
func AnonymousID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("anonymous_id", id)
}

// ExternalID records the external user id. Empty ids are omitted.
func ExternalID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("external_id", id)
}

// Path records a request path or URL.
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Method records an HTTP method.
func Method(m string) slog.Attr {
	return slog.String("method", m)
}

// StatusCode records an HTTP status code. Zero is omitted.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status_code", code)
}

// Attempt records a delivery attempt number, starting at 1.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// State records a pipeline state name.
func State(name string) slog.Attr {
	return slog.String("state", name)
}
