package content

// Content is one of Banner, Alert or HTML.
type Content interface {
	Type() Type
	Common() Base
}

// Base holds the fields shared by every content variant.
type Base struct {
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	ReadOnShow *bool             `json:"read_on_show,omitempty"`
	Custom     map[string]any    `json:"custom,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
}

// Common returns the shared fields.
func (b Base) Common() Base { return b }

// ShouldReadOnShow reports whether the notification is consumed as soon as
// it is shown. Unset means false.
func (b Base) ShouldReadOnShow() bool {
	return b.ReadOnShow != nil && *b.ReadOnShow
}

// Banner is a plain title and body.
type Banner struct {
	Base
}

func (Banner) Type() Type { return TypeBanner }

// Alert is a modal with an optional image.
type Alert struct {
	Base
	Image string `json:"image,omitempty"`
}

func (Alert) Type() Type { return TypeAlert }

// HTML is rendered as a full web view.
type HTML struct {
	Base
	HTML string `json:"html"`
}

func (HTML) Type() Type { return TypeHTML }

var (
	_ Content = Banner{}
	_ Content = Alert{}
	_ Content = HTML{}
)
