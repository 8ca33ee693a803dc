package inapp

import (
	"encoding/json"
	"net/url"
	"strings"
)

// BridgeScheme is the URL scheme HTML notifications use to talk to the SDK.
const BridgeScheme = "parcelvoy"

// ParseBridgeURL interprets a navigation from inside an HTML notification.
// ok is false for anything that is not a parcelvoy:// URL, which the surface
// should open normally.
//
//	parcelvoy://dismiss           -> ActionDismiss
//	parcelvoy://custom?k=v        -> ActionCustom {"k": "v", "url": ...}
//	parcelvoy://anything-else     -> ActionCustom {"url": ...}
func ParseBridgeURL(raw string) (action Action, params map[string]any, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, BridgeScheme) {
		return "", nil, false
	}

	switch strings.ToLower(u.Host) {
	case "dismiss":
		return ActionDismiss, map[string]any{}, true
	case "custom":
		params = map[string]any{}
		for key, values := range u.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
		params["url"] = raw
		return ActionCustom, params, true
	default:
		return ActionCustom, map[string]any{"url": raw}, true
	}
}

// ParseBridgeMessage interprets a postMessage(name, payload) call from the
// page script. The payload of a custom action is decoded as a JSON object;
// anything else is passed through under "payload". Unknown names yield
// ok=false.
func ParseBridgeMessage(name, payload string) (action Action, params map[string]any, ok bool) {
	switch Action(strings.ToLower(strings.TrimSpace(name))) {
	case ActionDismiss:
		return ActionDismiss, map[string]any{}, true
	case ActionCustom:
		params = map[string]any{}
		if payload == "" {
			return ActionCustom, params, true
		}
		if err := json.Unmarshal([]byte(payload), &params); err != nil || params == nil {
			params = map[string]any{"payload": payload}
		}
		return ActionCustom, params, true
	default:
		return "", nil, false
	}
}

// BridgeScript is injected into HTML notifications once the page has loaded.
// It exposes window.dismiss() and window.trigger(obj) on top of a host object
// named ParcelvoyJSBridge with a postMessage(name, payload) method.
const BridgeScript = `window.dismiss = function() { ParcelvoyJSBridge.postMessage('dismiss', ''); };
window.trigger = function(obj) { ParcelvoyJSBridge.postMessage('custom', JSON.stringify(obj)); };`
