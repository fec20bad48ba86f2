// Package component defines the contract shared by every overlay the
// touch UI can mount, and the interaction states that select them.
package component

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSession is returned when a component needs the remote session
// but none was supplied.
var ErrMissingSession = errors.New("remote session not available")

// Component is an overlay with a show/hide lifecycle. A component owns the
// surfaces, subscriptions and timers it acquires in Show and must release
// all of them in Hide.
type Component interface {
	// Show mounts the component. It is only called while hidden.
	Show() error

	// Hide unmounts the component. It is only called while shown.
	Hide() error
}

// Transitioner requests a change of interaction state. Components use it to
// react to taps and focus loss without knowing about the state manager.
type Transitioner interface {
	SetState(s State) error
}

// State is one mutually exclusive interaction mode of the UI.
type State int

const (
	// Interactive is the plain view with no overlays.
	Interactive State = iota
	// OnScreenKeyboard shows the virtual keyboard.
	OnScreenKeyboard
	// Magnifier shows a draggable 1:1 view of the remote display.
	Magnifier
	// Pan zooms the display to 1:1 and shows the pan arrows.
	Pan
	// PanTyping is Pan plus the platform's native keyboard.
	PanTyping
)

// AllStates lists every state in declaration order.
var AllStates = []State{Interactive, OnScreenKeyboard, Magnifier, Pan, PanTyping}

var stateNames = map[State]string{
	Interactive:      "interactive",
	OnScreenKeyboard: "osk",
	Magnifier:        "magnifier",
	Pan:              "pan",
	PanTyping:        "pan-typing",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState resolves a state from its String form.
func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}
