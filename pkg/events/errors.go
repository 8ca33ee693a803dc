package events

import "errors"

var (
	ErrDeliveryFailed = errors.New("events: delivery failed")
	ErrNoEvents       = errors.New("events: batch is empty")
)
