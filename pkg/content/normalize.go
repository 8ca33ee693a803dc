package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyCustom  = "custom"
	keyContext = "context"
)

// normalize hoists custom.context to a sibling context and flattens both
// maps in place.
func normalize(obj map[string]json.RawMessage) error {
	var hoisted json.RawMessage

	if raw, ok := obj[keyCustom]; ok && isObject(raw) {
		custom := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &custom); err != nil {
			return err
		}
		if ctx, ok := custom[keyContext]; ok {
			delete(custom, keyContext)
			if !isNull(ctx) {
				if !isObject(ctx) {
					return fmt.Errorf("custom.context must be an object, got %s", kind(ctx))
				}
				hoisted = ctx
			}
		}
		flat, err := flattenAny(custom)
		if err != nil {
			return err
		}
		if obj[keyCustom], err = json.Marshal(flat); err != nil {
			return err
		}
	}

	ctx := hoisted
	if ctx == nil {
		ctx = obj[keyContext]
	}
	if ctx == nil || isNull(ctx) {
		return nil
	}
	if !isObject(ctx) {
		return fmt.Errorf("context must be an object, got %s", kind(ctx))
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(ctx, &fields); err != nil {
		return err
	}
	flat, err := json.Marshal(flattenStrings(fields))
	if err != nil {
		return err
	}
	obj[keyContext] = flat
	return nil
}

// flattenAny keeps primitives as decoded values and replaces objects and
// arrays with their compact JSON text.
func flattenAny(fields map[string]json.RawMessage) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if isObject(v) || isArray(v) {
			out[k] = compact(v)
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return nil, err
		}
		out[k] = value
	}
	return out, nil
}

// flattenStrings renders every value as a string. Nulls are dropped.
func flattenStrings(fields map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch {
		case isNull(v):
		case bytes.HasPrefix(bytes.TrimSpace(v), []byte(`"`)):
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[k] = s
			}
		default:
			out[k] = compact(v)
		}
	}
	return out
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func kind(raw json.RawMessage) string {
	switch firstByte(raw) {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
