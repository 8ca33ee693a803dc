package content

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the wire format for timestamps: ISO-8601, UTC, milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a time.Time with the wire format above.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		t.Time = time.Time{}
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Accept any RFC 3339 form, e.g. without milliseconds or with an offset.
		var rfcErr error
		parsed, rfcErr = time.Parse(time.RFC3339Nano, s)
		if rfcErr != nil {
			return fmt.Errorf("%w: invalid timestamp %q", ErrDecode, s)
		}
	}
	t.Time = parsed.UTC()
	return nil
}
