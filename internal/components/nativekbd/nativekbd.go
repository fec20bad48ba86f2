// Package nativekbd provides the native keyboard component: an invisible
// text input placed over the expected input rectangle whose only job is to
// hold focus so the platform shows its own keyboard.
package nativekbd

import (
	"errors"
	"image"
	"log/slog"
	"math"

	"github.com/phinze/touchdeck/internal/component"
)

// NativeKeyboard is the component shown in the PanTyping state. Losing
// focus while shown requests the Interactive state.
type NativeKeyboard struct {
	screen component.Screen
	states component.Transitioner
	input  *component.InputRect

	target *target
	cancel func()
}

// target is the invisible input. Its layer rectangle is in display pixels
// and it moves with the display as it scrolls.
type target struct {
	*component.Layer
	screen component.Screen
}

func (t *target) Bounds() image.Rectangle {
	return t.Layer.Bounds().Sub(t.screen.Scroll())
}

// New creates a native keyboard reading its position from input.
func New(screen component.Screen, states component.Transitioner, input *component.InputRect) (*NativeKeyboard, error) {
	if screen == nil || states == nil || input == nil {
		return nil, errors.New("native keyboard: screen, transitioner and input rectangle are required")
	}
	k := &NativeKeyboard{screen: screen, states: states, input: input}
	k.target = &target{
		Layer:  component.NewLayer("event-target", image.Rectangle{}, nil),
		screen: screen,
	}
	return k, nil
}

// Show scrolls the expected input rectangle into view, moves the input
// over it, mounts it and focuses it. The rectangle is in display pixels,
// which the display matches while it is zoomed to 1:1.
func (k *NativeKeyboard) Show() error {
	r := PixelRect(k.input.Get())
	k.screen.ScrollIntoView(r)
	k.target.SetRect(r)
	if err := k.screen.Mount(k.target); err != nil {
		return err
	}
	k.cancel = k.screen.Subscribe(k.target, k.handle)
	k.screen.Focus(k.target)
	return nil
}

// Hide blurs and unmounts the input. The blur listener is removed first so
// that hiding does not itself request a transition.
func (k *NativeKeyboard) Hide() error {
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
	k.screen.Blur(k.target)
	return k.screen.Unmount(k.target)
}

// Bounds returns the input's rectangle in viewport pixels. Fractional
// edges round to the nearest pixel.
func (k *NativeKeyboard) Bounds() image.Rectangle {
	return k.target.Bounds()
}

// DisplayRect returns the input's rectangle in display pixels, independent
// of scrolling.
func (k *NativeKeyboard) DisplayRect() image.Rectangle {
	return k.target.Layer.Bounds()
}

// PixelRect converts an expected input rectangle to pixel bounds.
func PixelRect(r component.Rect) image.Rectangle {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	return image.Rect(x, y, x+int(math.Round(r.Width)), y+int(math.Round(r.Height)))
}

func (k *NativeKeyboard) handle(ev component.Event) bool {
	if ev.Kind != component.Blur {
		return false
	}
	if err := k.states.SetState(component.Interactive); err != nil {
		slog.Warn("native keyboard transition failed", "err", err)
	}
	return true
}
