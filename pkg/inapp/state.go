package inapp

import (
	"fmt"
	"slices"
)

// State is a pipeline cycle state.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateDeciding  State = "deciding"
	StateShowing   State = "showing"
	StateConsuming State = "consuming"
	StateSkipping  State = "skipping"
)

func (s State) String() string { return string(s) }

// transitions lists the allowed moves. Every state may return to Idle.
var transitions = map[State][]State{
	StateIdle:      {StateFetching},
	StateFetching:  {StateDeciding},
	StateDeciding:  {StateShowing, StateConsuming, StateSkipping},
	StateShowing:   {StateConsuming},
	StateConsuming: {StateFetching},
	StateSkipping:  {StateFetching},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	if to == StateIdle {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// machine tracks one cycle.
type machine struct {
	current  State
	onChange func(from, to State)
}

func newMachine(onChange func(from, to State)) *machine {
	return &machine{current: StateIdle, onChange: onChange}
}

func (m *machine) to(next State) error {
	if !CanTransition(m.current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, next)
	}
	prev := m.current
	m.current = next
	if m.onChange != nil && prev != next {
		m.onChange(prev, next)
	}
	return nil
}
