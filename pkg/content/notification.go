package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Notification is an in-app notification as listed by the API. ID is the
// dedup key; it defaults to 0 when the payload omits it.
type Notification struct {
	ID          int64
	ContentType Type
	Content     Content
	ReadAt      *Timestamp
	ExpiresAt   *Timestamp
}

type wireNotification struct {
	ID          int64           `json:"id"`
	ContentType *string         `json:"content_type"`
	Content     json.RawMessage `json:"content"`
	ReadAt      *Timestamp      `json:"read_at"`
	ExpiresAt   *Timestamp      `json:"expires_at"`
}

// DecodeNotification decodes one notification document.
func DecodeNotification(raw []byte) (Notification, error) {
	var n Notification
	if err := n.UnmarshalJSON(raw); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var w wireNotification
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if w.ContentType == nil {
		return fmt.Errorf("%w: %w", ErrDecode, ErrMissingContentType)
	}

	t, err := ParseType(*w.ContentType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	c, err := decodeContent(t, w.Content)
	if err != nil {
		return fmt.Errorf("%w: notification %d: %w", ErrDecode, w.ID, err)
	}

	*n = Notification{
		ID:          w.ID,
		ContentType: t,
		Content:     c,
		ReadAt:      w.ReadAt,
		ExpiresAt:   w.ExpiresAt,
	}
	return nil
}

func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int64      `json:"id"`
		ContentType Type       `json:"content_type"`
		Content     Content    `json:"content"`
		ReadAt      *Timestamp `json:"read_at"`
		ExpiresAt   *Timestamp `json:"expires_at"`
	}{n.ID, n.ContentType, n.Content, n.ReadAt, n.ExpiresAt})
}

// IsExpired reports whether ExpiresAt is set and not after now.
func (n Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.IsZero() && !n.ExpiresAt.After(now)
}

// ReadOnShow reports whether the content asks to be consumed when shown.
func (n Notification) ReadOnShow() bool {
	if n.Content == nil {
		return false
	}
	return n.Content.Common().ShouldReadOnShow()
}

func decodeContent(t Type, raw json.RawMessage) (Content, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, ErrMissingContent
	}
	if !isObject(raw) {
		return nil, fmt.Errorf("content must be an object, got %s", kind(raw))
	}

	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if err := normalize(obj); err != nil {
		return nil, err
	}
	if err := checkShape(t, obj); err != nil {
		return nil, err
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeHTML:
		var c HTML
		err = json.Unmarshal(normalized, &c)
		return c, err
	case TypeAlert:
		var c Alert
		err = json.Unmarshal(normalized, &c)
		return c, err
	default:
		var c Banner
		err = json.Unmarshal(normalized, &c)
		return c, err
	}
}

func checkShape(t Type, obj map[string]json.RawMessage) error {
	has := func(key string) bool {
		v, ok := obj[key]
		return ok && !isNull(v)
	}

	switch {
	case t == TypeHTML && !has("html"):
		return fmt.Errorf("%w: %s content has no html", ErrShapeMismatch, t)
	case t != TypeHTML && has("html"):
		return fmt.Errorf("%w: %s content carries html", ErrShapeMismatch, t)
	case t == TypeBanner && has("image"):
		return fmt.Errorf("%w: banner content carries an image", ErrShapeMismatch)
	}
	return nil
}
