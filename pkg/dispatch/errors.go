package dispatch

import "errors"

var (
	ErrQueueClosed  = errors.New("dispatch: queue is closed")
	ErrTaskPanicked = errors.New("dispatch: task panicked")
)
