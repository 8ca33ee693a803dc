package api

import (
	"errors"
	"fmt"
)

var (
	ErrTransport    = errors.New("parcelvoy: transport failure")
	ErrHTTPStatus   = errors.New("parcelvoy: unexpected http status")
	ErrDecode       = errors.New("parcelvoy: failed to decode response")
	ErrEncode       = errors.New("parcelvoy: failed to encode request body")
	ErrPrecondition = errors.New("parcelvoy: precondition failed")
	ErrInvalidURL   = errors.New("parcelvoy: invalid request url")
)

// StatusError is returned when the API answers outside the success band.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("parcelvoy: invalid status code %d", e.StatusCode)
	}
	return fmt.Sprintf("parcelvoy: invalid status code %d, body: %s", e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrHTTPStatus) match any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
