package content

import (
	"errors"
	"fmt"
)

var (
	ErrDecode             = errors.New("content: failed to decode notification")
	ErrUnknownContentType = errors.New("content: unknown notification content type")
	ErrShapeMismatch      = errors.New("content: content does not match declared type")
	ErrMissingContentType = errors.New("content: content_type is missing")
	ErrMissingContent     = errors.New("content: content object is missing")
)

// UnknownTypeError carries the content_type string that could not be parsed.
type UnknownTypeError struct {
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown notification content type: %s", e.Value)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownContentType
}
