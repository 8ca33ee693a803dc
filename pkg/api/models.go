package api

// Empty is the response type for calls whose body is ignored.
type Empty struct{}

// Identity is a point-in-time user profile sent to `identify`.
type Identity struct {
	AnonymousID string         `json:"anonymous_id"`
	ExternalID  string         `json:"external_id,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty"`
	Traits      map[string]any `json:"data,omitempty"`
}

// Alias binds an anonymous id to an external id. It doubles as the
// identity proof for user-scoped calls.
type Alias struct {
	AnonymousID string `json:"anonymous_id"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Event is a single tracked behavioral event.
type Event struct {
	Name        string         `json:"name"`
	AnonymousID string         `json:"anonymous_id"`
	ExternalID  string         `json:"external_id,omitempty"`
	Properties  map[string]any `json:"properties"`
}

// Device registers a device and its push token.
type Device struct {
	AnonymousID string `json:"anonymous_id"`
	ExternalID  string `json:"external_id,omitempty"`
	DeviceID    string `json:"device_id"`
	Token       string `json:"token,omitempty"`
	OS          string `json:"os"`
	OSVersion   string `json:"os_version"`
	Model       string `json:"model"`
	AppBuild    string `json:"app_build"`
	AppVersion  string `json:"app_version"`
	SDKVersion  string `json:"sdk_version"`
}

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
}

// HasMore reports whether the server returned a cursor for another page.
func (p Page[T]) HasMore() bool {
	return p.NextCursor != nil && *p.NextCursor != ""
}
