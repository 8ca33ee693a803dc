package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/parcelvoy/go-sdk/pkg/events"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy events.BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{"none", events.NoBackoff{}, 3, 0},
		{"fixed first retry", events.FixedBackoff{Interval: time.Second}, 1, time.Second},
		{"fixed zero attempt", events.FixedBackoff{Interval: time.Second}, 0, 0},
		{"exponential first", events.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second}, 1, 100 * time.Millisecond},
		{"exponential third", events.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second}, 3, 400 * time.Millisecond},
		{"exponential capped", events.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second}, 10, time.Second},
		{"exponential defaults", events.ExponentialBackoff{}, 2, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.strategy.NextInterval(tt.attempt))
		})
	}
}
