package content_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelvoy/go-sdk/pkg/content"
)

func TestDecodeNotification_Variants(t *testing.T) {
	t.Parallel()

	t.Run("html", func(t *testing.T) {
		t.Parallel()
		n, err := content.DecodeNotification([]byte(`{"content_type":"html","content":{"title":"t","body":"b","html":"<p/>"}}`))
		require.NoError(t, err)

		assert.Equal(t, content.TypeHTML, n.ContentType)
		c, ok := n.Content.(content.HTML)
		require.True(t, ok, "got %T", n.Content)
		assert.Equal(t, "t", c.Title)
		assert.Equal(t, "b", c.Body)
		assert.Equal(t, "<p/>", c.HTML)
		assert.Zero(t, n.ID, "missing id defaults to 0")
	})

	t.Run("alert", func(t *testing.T) {
		t.Parallel()
		n, err := content.DecodeNotification([]byte(`{"id":9,"content_type":"alert","content":{"title":"t","body":"b","image":"u"}}`))
		require.NoError(t, err)

		c, ok := n.Content.(content.Alert)
		require.True(t, ok, "got %T", n.Content)
		assert.Equal(t, "u", c.Image)
		assert.Equal(t, int64(9), n.ID)
	})

	t.Run("alert without image", func(t *testing.T) {
		t.Parallel()
		n, err := content.DecodeNotification([]byte(`{"content_type":"alert","content":{"title":"t","body":"b"}}`))
		require.NoError(t, err)
		assert.IsType(t, content.Alert{}, n.Content)
	})

	t.Run("banner", func(t *testing.T) {
		t.Parallel()
		n, err := content.DecodeNotification([]byte(`{"id":1,"content_type":"banner","content":{"title":"t","body":"b","read_on_show":true}}`))
		require.NoError(t, err)

		c, ok := n.Content.(content.Banner)
		require.True(t, ok, "got %T", n.Content)
		assert.Equal(t, "t", c.Title)
		assert.True(t, n.ReadOnShow())
	})

	t.Run("case insensitive type", func(t *testing.T) {
		t.Parallel()
		n, err := content.DecodeNotification([]byte(`{"content_type":"  HTML ","content":{"title":"t","body":"b","html":"x"}}`))
		require.NoError(t, err)
		assert.Equal(t, content.TypeHTML, n.ContentType)
	})
}

func TestDecodeNotification_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"unknown type", `{"content_type":"carousel","content":{"title":"t","body":"b"}}`, content.ErrUnknownContentType},
		{"missing type", `{"content":{"title":"t","body":"b"}}`, content.ErrMissingContentType},
		{"missing content", `{"content_type":"banner"}`, content.ErrMissingContent},
		{"null content", `{"content_type":"banner","content":null}`, content.ErrMissingContent},
		{"html without markup", `{"content_type":"html","content":{"title":"t","body":"b","image":"u"}}`, content.ErrShapeMismatch},
		{"banner with markup", `{"content_type":"banner","content":{"title":"t","body":"b","html":"<p/>"}}`, content.ErrShapeMismatch},
		{"alert with markup", `{"content_type":"alert","content":{"title":"t","body":"b","html":"<p/>"}}`, content.ErrShapeMismatch},
		{"banner with image", `{"content_type":"banner","content":{"title":"t","body":"b","image":"u"}}`, content.ErrShapeMismatch},
		{"malformed", `{"content_type":`, content.ErrDecode},
		{"wrong field type", `{"content_type":"banner","content":{"title":5,"body":"b"}}`, content.ErrDecode},
		{"context not object", `{"content_type":"banner","content":{"title":"t","body":"b","custom":{"context":"x"}}}`, content.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := content.DecodeNotification([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, content.ErrDecode)
		})
	}
}

func TestDecodeNotification_UnknownTypeNamesValue(t *testing.T) {
	t.Parallel()

	_, err := content.DecodeNotification([]byte(`{"content_type":"Carousel","content":{}}`))
	var ute *content.UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "Carousel", ute.Value)
	assert.Contains(t, err.Error(), "Carousel")
}

func TestDecodeNotification_HoistsNestedContext(t *testing.T) {
	t.Parallel()

	n, err := content.DecodeNotification([]byte(`{
		"content_type":"banner",
		"content":{"title":"t","body":"b","custom":{"a":1,"context":{"k":"v"}}}
	}`))
	require.NoError(t, err)

	base := n.Content.Common()
	assert.Equal(t, map[string]string{"k": "v"}, base.Context)
	assert.Equal(t, map[string]any{"a": float64(1)}, base.Custom)
}

func TestDecodeNotification_SiblingContext(t *testing.T) {
	t.Parallel()

	n, err := content.DecodeNotification([]byte(`{
		"content_type":"banner",
		"content":{"title":"t","body":"b","custom":{"a":"x"},"context":{"k":"v","n":2,"ok":true,"gone":null}}
	}`))
	require.NoError(t, err)

	base := n.Content.Common()
	assert.Equal(t, map[string]string{"k": "v", "n": "2", "ok": "true"}, base.Context)
	assert.Equal(t, map[string]any{"a": "x"}, base.Custom)
}

func TestDecodeNotification_FlattensNestedValues(t *testing.T) {
	t.Parallel()

	n, err := content.DecodeNotification([]byte(`{
		"content_type":"banner",
		"content":{
			"title":"t","body":"b",
			"custom":{"obj":{"x": 1},"list":[1, 2],"flag":false,"context":{"user":{"id":"u1"}}}
		}
	}`))
	require.NoError(t, err)

	base := n.Content.Common()
	assert.Equal(t, map[string]any{
		"obj":  `{"x":1}`,
		"list": `[1,2]`,
		"flag": false,
	}, base.Custom)
	assert.Equal(t, map[string]string{"user": `{"id":"u1"}`}, base.Context)
}

func TestDecodeNotification_Timestamps(t *testing.T) {
	t.Parallel()

	n, err := content.DecodeNotification([]byte(`{
		"id":3,"content_type":"banner","content":{"title":"t","body":"b"},
		"read_at":null,"expires_at":"2024-05-01T10:20:30.123Z"
	}`))
	require.NoError(t, err)

	assert.Nil(t, n.ReadAt)
	require.NotNil(t, n.ExpiresAt)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.UTC), n.ExpiresAt.Time)

	assert.True(t, n.IsExpired(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, n.IsExpired(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
}

func TestNotification_PageDecode(t *testing.T) {
	t.Parallel()

	var page struct {
		Results []content.Notification `json:"results"`
	}
	err := json.Unmarshal([]byte(`{"results":[
		{"id":1,"content_type":"banner","content":{"title":"a","body":"b"}},
		{"id":2,"content_type":"nope","content":{"title":"a","body":"b"}}
	]}`), &page)
	assert.ErrorIs(t, err, content.ErrUnknownContentType)
}

func TestNotification_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	ts := content.NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 6_789_000, time.UTC))
	in := content.Notification{
		ID:          42,
		ContentType: content.TypeAlert,
		Content: content.Alert{
			Base:  content.Base{Title: "t", Body: "b", Context: map[string]string{"k": "v"}},
			Image: "https://img",
		},
		ExpiresAt: &ts,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"expires_at":"2024-01-02T03:04:05.006Z"`)
	assert.Contains(t, string(data), `"content_type":"alert"`)

	out, err := content.DecodeNotification(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Content, out.Content)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt.Time))
}

func TestParseType(t *testing.T) {
	t.Parallel()

	got, err := content.ParseType("Alert")
	require.NoError(t, err)
	assert.Equal(t, content.TypeAlert, got)

	_, err = content.ParseType("")
	assert.ErrorIs(t, err, content.ErrUnknownContentType)
}
