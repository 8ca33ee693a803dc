package events

import (
	"math"
	"time"
)

// BackoffStrategy returns the delay before retry number attempt (1-based).
type BackoffStrategy interface {
	NextInterval(attempt int) time.Duration
}

// NoBackoff resubmits immediately.
type NoBackoff struct{}

func (NoBackoff) NextInterval(int) time.Duration { return 0 }

// FixedBackoff waits the same interval before every retry.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// ExponentialBackoff doubles the delay on each retry up to Max.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	initial := e.Initial
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	limit := e.Max
	if limit <= 0 {
		limit = 10 * time.Second
	}
	d := float64(initial) * math.Pow(2, float64(attempt-1))
	if d > float64(limit) {
		return limit
	}
	return time.Duration(d)
}
