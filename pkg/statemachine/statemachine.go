// Package statemachine provides a small thread-safe finite state
// machine. The onboarding service uses it to drive the tenant
// lifecycle: provisioning → active → (inactive | suspended) → active.
package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named state.
type State string

// Event is a named trigger for a transition.
type Event string

// Action runs during a transition; an error aborts the transition and
// the machine stays in its current state.
type Action func(ctx context.Context, from, to State, event Event) error

// Guard decides at runtime whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event) bool

type transition struct {
	to      State
	guards  []Guard
	actions []Action
}

// Machine is a finite state machine with per-event transitions.
// Transition lookup is O(1) on a [from][event] map.
type Machine struct {
	mu      sync.RWMutex
	initial State
	current State
	table   map[State]map[Event][]transition
}

// New creates a machine in the given initial state.
func New(initial State) *Machine {
	return &Machine{
		initial: initial,
		current: initial,
		table:   make(map[State]map[Event][]transition),
	}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition registers a transition. Several transitions may share
// the same from/event pair; the first whose guards all pass wins.
func (m *Machine) AddTransition(from, to State, event Event, guards []Guard, actions []Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.table[from] == nil {
		m.table[from] = make(map[Event][]transition)
	}
	m.table[from][event] = append(m.table[from][event], transition{to: to, guards: guards, actions: actions})
}

// Fire applies the event to the current state. Returns an error when
// no transition matches, a guard rejects, or an action fails.
func (m *Machine) Fire(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.table[m.current][event]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s on %s", ErrNoTransition, event, m.current)
	}

	for _, t := range candidates {
		if !guardsPass(ctx, t.guards, m.current, event) {
			continue
		}
		for _, action := range t.actions {
			if action == nil {
				continue
			}
			if err := action(ctx, m.current, t.to, event); err != nil {
				return fmt.Errorf("transition action: %w", err)
			}
		}
		m.current = t.to
		return nil
	}

	return fmt.Errorf("%w: %s on %s", ErrTransitionRejected, event, m.current)
}

// CanFire reports whether the event has a transition whose guards pass
// in the current state.
func (m *Machine) CanFire(ctx context.Context, event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.table[m.current][event] {
		if guardsPass(ctx, t.guards, m.current, event) {
			return true
		}
	}
	return false
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// SetCurrent forces the machine into a state, used when rehydrating a
// machine from a persisted record.
func (m *Machine) SetCurrent(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event) bool {
	for _, guard := range guards {
		if guard != nil && !guard(ctx, from, event) {
			return false
		}
	}
	return true
}
