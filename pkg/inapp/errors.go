package inapp

import "errors"

var (
	ErrNoDisplayTarget   = errors.New("inapp: no display target registered")
	ErrInvalidTransition = errors.New("inapp: invalid state transition")
	ErrUnknownDecision   = errors.New("inapp: unknown display decision")
	ErrCyclePanicked     = errors.New("inapp: notification cycle panicked")
)
