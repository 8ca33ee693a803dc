package content

import (
	"strings"
)

// Type is the declared notification content type.
type Type string

const (
	TypeBanner Type = "banner"
	TypeAlert  Type = "alert"
	TypeHTML   Type = "html"
)

// ParseType matches s against the known types, ignoring case and
// surrounding whitespace.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBanner, TypeAlert, TypeHTML:
		return t, nil
	default:
		return "", &UnknownTypeError{Value: s}
	}
}

func (t Type) String() string {
	return string(t)
}
