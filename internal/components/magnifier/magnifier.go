// Package magnifier provides the magnifier overlay: a draggable window that
// shows a 1:1 view of a snapshot of the remote display and publishes where
// native text input is expected.
package magnifier

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/phinze/touchdeck/internal/render"
	"golang.org/x/image/draw"
)

// Magnifier is the component shown in the Magnifier state.
type Magnifier struct {
	component.Draggable

	screen  component.Screen
	session remote.Session
	states  component.Transitioner
	input   *component.InputRect

	// background blocks input to the display and dismisses on tap; window
	// is the draggable clipping rectangle.
	background *component.Layer
	window     *component.Layer

	snapshot     *image.RGBA
	clipX, clipY float64
	cancels      []func()
}

// New creates a magnifier whose window is size pixels large.
func New(screen component.Screen, session remote.Session, states component.Transitioner, input *component.InputRect, size image.Point) (*Magnifier, error) {
	if session == nil {
		return nil, fmt.Errorf("magnifier: %w", component.ErrMissingSession)
	}
	if screen == nil || states == nil || input == nil {
		return nil, errors.New("magnifier: screen, transitioner and input rectangle are required")
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("magnifier: invalid size %v", size)
	}

	m := &Magnifier{
		screen:  screen,
		session: session,
		states:  states,
		input:   input,
	}
	m.background = component.NewLayer("magnifier-background", image.Rectangle{}, m.paintBackground)
	m.window = component.NewLayer("magnifier", image.Rectangle{Max: size}, m.paintWindow)
	m.Draggable = component.NewDraggable(m.window, screen)
	m.OnMove = m.onMove
	return m, nil
}

// Show snapshots the remote display and mounts the magnifier.
func (m *Magnifier) Show() error {
	if m.session == nil {
		return fmt.Errorf("magnifier: %w", component.ErrMissingSession)
	}

	// Copy displayed image
	flat := m.session.Flatten()
	m.snapshot = image.NewRGBA(image.Rect(0, 0, m.session.Width(), m.session.Height()))
	draw.Draw(m.snapshot, m.snapshot.Bounds(), flat, flat.Bounds().Min, draw.Src)

	m.background.SetRect(image.Rectangle{Max: m.screen.Size()})
	if err := m.screen.Mount(m.background); err != nil {
		return err
	}
	if err := m.screen.Mount(m.window); err != nil {
		_ = m.screen.Unmount(m.background)
		return err
	}

	m.cancels = append(m.cancels,
		m.screen.Subscribe(m.window, m.handleWindow),
		m.screen.Subscribe(m.background, m.handleBackground),
	)

	// Re-clamp against the current viewport and bring the view in line
	// with the new snapshot.
	m.MoveTo(m.Position())
	return nil
}

// Hide unmounts the magnifier and drops the snapshot.
func (m *Magnifier) Hide() error {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.Cancel()
	m.snapshot = nil

	return errors.Join(
		m.screen.Unmount(m.window),
		m.screen.Unmount(m.background),
	)
}

// Clip returns the top-left of the region of the remote display currently
// visible through the window.
func (m *Magnifier) Clip() (x, y float64) {
	return m.clipX, m.clipY
}

// onMove maps the window position to a clip position on the remote display
// and publishes the expected input rectangle.
func (m *Magnifier) onMove(x, y int) {
	size := m.window.Size()
	viewport := m.screen.Size()

	m.clipX = ClipOffset(x, viewport.X, size.X, m.session.Width())
	m.clipY = ClipOffset(y, viewport.Y, size.Y, m.session.Height())

	m.input.Set(component.Rect{
		X:      m.clipX,
		Y:      m.clipY,
		Width:  float64(size.X),
		Height: float64(size.Y),
	})
}

// ClipOffset maps a window position along one axis to the matching offset
// into the remote display, so that the window's travel across the viewport
// spans the whole display. When the window fills the viewport on that axis
// the offset is 0.
func ClipOffset(pos, viewport, size, remote int) float64 {
	travel := viewport - size
	if travel <= 0 {
		return 0
	}
	return float64(pos) / float64(travel) * float64(remote-size)
}

// handleWindow drags the window and switches to typing on tap.
func (m *Magnifier) handleWindow(ev component.Event) bool {
	if ev.Kind == component.Tap {
		m.transition(component.PanTyping)
		return true
	}
	return m.HandlePointer(ev)
}

// handleBackground dismisses the magnifier on tap.
func (m *Magnifier) handleBackground(ev component.Event) bool {
	if ev.Kind != component.Tap {
		return false
	}
	m.transition(component.Interactive)
	return true
}

func (m *Magnifier) transition(s component.State) {
	if err := m.states.SetState(s); err != nil {
		slog.Warn("magnifier transition failed", "to", s, "err", err)
	}
}

func (m *Magnifier) paintBackground(dst draw.Image, r image.Rectangle) {
	render.Fill(dst, r, render.ColorScrim)
}

func (m *Magnifier) paintWindow(dst draw.Image, r image.Rectangle) {
	if m.snapshot == nil {
		return
	}
	origin := image.Pt(int(math.Round(m.clipX)), int(math.Round(m.clipY)))
	draw.Draw(dst, r, m.snapshot, origin, draw.Src)
	render.Outline(dst, r, render.ColorBorder)
}
