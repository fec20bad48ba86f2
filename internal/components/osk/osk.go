// Package osk provides the on-screen keyboard component, which mounts a
// virtual keyboard widget along the bottom of the viewport and forwards its
// key events to the remote session.
package osk

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/remote"
)

// DefaultResizeInterval is how often the keyboard width is checked while
// the keyboard is shown.
const DefaultResizeInterval = 30 * time.Millisecond

// Widget is a virtual keyboard. Its layout and rendering are its own
// business; the component only mounts its element, keeps it sized to the
// viewport width and forwards its key events.
type Widget interface {
	// Element returns the layer the keyboard draws into. Its size follows
	// the last Resize.
	Element() *component.Layer

	// Resize lays the keyboard out for width pixels.
	Resize(width int)

	// HandleEvent processes pointer input on the element.
	HandleEvent(ev component.Event) bool

	// OnKeyDown and OnKeyUp set the callbacks for key presses and releases.
	OnKeyDown(fn func(keysym uint32))
	OnKeyUp(fn func(keysym uint32))
}

// OnScreenKeyboard is the component shown in the OnScreenKeyboard state.
type OnScreenKeyboard struct {
	screen    component.Screen
	scheduler component.Scheduler
	widget    Widget
	interval  time.Duration

	lastWidth   int
	stopResize  func()
	unsubscribe func()
}

// New creates an on-screen keyboard that checks its width every interval.
func New(screen component.Screen, session remote.Session, scheduler component.Scheduler, widget Widget, interval time.Duration) (*OnScreenKeyboard, error) {
	if session == nil {
		return nil, fmt.Errorf("on-screen keyboard: %w", component.ErrMissingSession)
	}
	if screen == nil || scheduler == nil || widget == nil {
		return nil, errors.New("on-screen keyboard: screen, scheduler and widget are required")
	}
	if interval <= 0 {
		interval = DefaultResizeInterval
	}

	widget.OnKeyDown(func(keysym uint32) {
		if err := session.SendKeyEvent(true, keysym); err != nil {
			slog.Warn("failed to send key press", "keysym", keysym, "err", err)
		}
	})
	widget.OnKeyUp(func(keysym uint32) {
		if err := session.SendKeyEvent(false, keysym); err != nil {
			slog.Warn("failed to send key release", "keysym", keysym, "err", err)
		}
	})

	return &OnScreenKeyboard{
		screen:    screen,
		scheduler: scheduler,
		widget:    widget,
		interval:  interval,
	}, nil
}

// Show mounts the keyboard and starts polling its width.
func (o *OnScreenKeyboard) Show() error {
	if err := o.screen.Mount(o.widget.Element()); err != nil {
		return err
	}
	o.unsubscribe = o.screen.Subscribe(o.widget.Element(), o.widget.HandleEvent)

	// Start periodic update of keyboard size
	o.stopResize = o.scheduler.Every(o.interval, o.updateSize)
	o.updateSize()
	return nil
}

// Hide unmounts the keyboard and stops polling.
func (o *OnScreenKeyboard) Hide() error {
	o.release()
	return o.screen.Unmount(o.widget.Element())
}

// release cancels the resize timer and input subscription.
func (o *OnScreenKeyboard) release() {
	if o.stopResize != nil {
		o.stopResize()
		o.stopResize = nil
	}
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

// updateSize resizes the widget when the viewport width has changed and
// keeps the element anchored to the bottom of the viewport.
func (o *OnScreenKeyboard) updateSize() {
	viewport := o.screen.Size()
	if viewport.X != o.lastWidth {
		o.widget.Resize(viewport.X)
		o.lastWidth = viewport.X
		slog.Debug("keyboard resized", "width", viewport.X)
	}

	el := o.widget.Element()
	el.Translate(image.Pt(0, viewport.Y-el.Size().Y))
}
