// Package coordinator owns the current interaction state and mounts and
// unmounts components as the state changes.
package coordinator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phinze/touchdeck/internal/component"
)

var (
	// ErrInvalidState is returned by SetState for a state the manager was
	// not created with.
	ErrInvalidState = errors.New("invalid interaction state")

	// ErrRegistrationClosed is returned by RegisterComponent once the first
	// SetState has been issued.
	ErrRegistrationClosed = errors.New("component registration closed")
)

// registration associates a component with the states it is visible in.
type registration struct {
	component component.Component
	states    map[component.State]bool

	// mounted is true between a successful Show and a successful Hide.
	mounted bool
}

// StateManager holds the current interaction state and a static registry of
// components per state. On every transition it hides the components that
// leave and shows the ones that enter; components common to both states are
// left alone.
//
// Transitions requested while another transition is running (from a Show or
// Hide callback, or from another goroutine) are queued and run, in order,
// once the running one completes.
type StateManager struct {
	mu sync.Mutex

	declared      map[component.State]bool
	registrations []*registration
	watchers      []func(from, to component.State)

	// Lifecycle
	started       bool
	shown         bool
	current       component.State
	transitioning bool
	pending       []component.State
}

// New creates a StateManager accepting the given states.
func New(states ...component.State) *StateManager {
	declared := make(map[component.State]bool, len(states))
	for _, s := range states {
		declared[s] = true
	}
	return &StateManager{declared: declared}
}

// RegisterComponent makes c visible in each of states. A component may be
// registered once with several states; registering it again adds states.
// Must be called before the first SetState.
func (m *StateManager) RegisterComponent(c component.Component, states ...component.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrRegistrationClosed
	}
	if c == nil {
		return errors.New("register nil component")
	}
	if len(states) == 0 {
		return fmt.Errorf("register %T: no states given", c)
	}
	for _, s := range states {
		if !m.declared[s] {
			return fmt.Errorf("register %T: %w: %s", c, ErrInvalidState, s)
		}
	}

	reg := m.lookup(c)
	if reg == nil {
		reg = &registration{component: c, states: make(map[component.State]bool)}
		m.registrations = append(m.registrations, reg)
	}
	for _, s := range states {
		reg.states[s] = true
	}
	return nil
}

// Watch registers fn to be called after every completed transition. It runs
// on the goroutine performing the transition.
func (m *StateManager) Watch(fn func(from, to component.State)) {
	m.mu.Lock()
	m.watchers = append(m.watchers, fn)
	m.mu.Unlock()
}

// State returns the current state. ok is false before the first transition.
func (m *StateManager) State() (s component.State, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.shown
}

// SetState transitions to s. Setting the state that is already current does
// nothing. Errors from Hide or Show abort the transition and drop any queued
// transitions.
func (m *StateManager) SetState(s component.State) error {
	m.mu.Lock()
	if !m.declared[s] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, s)
	}
	m.started = true
	m.pending = append(m.pending, s)
	if m.transitioning {
		m.mu.Unlock()
		slog.Debug("transition queued", "to", s)
		return nil
	}
	m.transitioning = true
	m.mu.Unlock()

	return m.drain()
}

// drain runs queued transitions until none are left.
func (m *StateManager) drain() error {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.transitioning = false
			m.mu.Unlock()
			return nil
		}
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		if err := m.transition(next); err != nil {
			m.mu.Lock()
			m.pending = nil
			m.transitioning = false
			m.mu.Unlock()
			return err
		}
	}
}

// transition performs one hide/show batch. Only the draining goroutine
// calls it.
//
// The batch is computed from what is actually mounted, not from the
// previous state, so a component whose Show or Hide failed is retried on
// the next transition instead of being hidden twice or left behind.
func (m *StateManager) transition(to component.State) error {
	m.mu.Lock()
	from, hadState := m.current, m.shown
	m.mu.Unlock()

	var toHide, toShow []*registration
	for _, reg := range m.registrations {
		inNew := reg.states[to]
		switch {
		case reg.mounted && !inNew:
			toHide = append(toHide, reg)
		case inNew && !reg.mounted:
			toShow = append(toShow, reg)
		}
	}

	if hadState && from == to && len(toHide) == 0 && len(toShow) == 0 {
		return nil
	}

	for _, reg := range toHide {
		if err := reg.component.Hide(); err != nil {
			return fmt.Errorf("hide %T leaving %s: %w", reg.component, from, err)
		}
		reg.mounted = false
	}

	m.mu.Lock()
	m.current = to
	m.shown = true
	watchers := append([]func(from, to component.State){}, m.watchers...)
	m.mu.Unlock()

	for _, reg := range toShow {
		if err := reg.component.Show(); err != nil {
			return fmt.Errorf("show %T entering %s: %w", reg.component, to, err)
		}
		reg.mounted = true
	}

	slog.Debug("state changed", "from", from, "to", to, "hidden", len(toHide), "shown", len(toShow))

	if hadState && from == to {
		return nil
	}
	for _, fn := range watchers {
		fn(from, to)
	}
	return nil
}

func (m *StateManager) lookup(c component.Component) *registration {
	for _, reg := range m.registrations {
		if reg.component == c {
			return reg
		}
	}
	return nil
}
