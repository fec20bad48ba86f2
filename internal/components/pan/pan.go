// Package pan provides the pan overlay: a full-viewport surface with four
// directional arrows that turns drags into scrolling and taps into typing.
package pan

import (
	"errors"
	"image"
	"log/slog"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/render"
	"golang.org/x/image/draw"
)

// indicatorSize is the side of each arrow's square, in pixels.
const indicatorSize = 32

// Overlay is the component shown in the Pan and PanTyping states. Dragging
// scrolls the display under the viewport; tapping anywhere requests
// PanTyping.
type Overlay struct {
	screen component.Screen
	states component.Transitioner

	layer  *component.Layer
	cancel func()

	dragging bool
	last     image.Point
}

// New creates a pan overlay.
func New(screen component.Screen, states component.Transitioner) (*Overlay, error) {
	if screen == nil || states == nil {
		return nil, errors.New("pan overlay: screen and transitioner are required")
	}
	o := &Overlay{screen: screen, states: states}
	o.layer = component.NewLayer("pan-overlay", image.Rectangle{}, paintIndicators)
	return o, nil
}

// Show mounts the overlay over the whole viewport.
func (o *Overlay) Show() error {
	o.layer.SetRect(image.Rectangle{Max: o.screen.Size()})
	if err := o.screen.Mount(o.layer); err != nil {
		return err
	}
	o.cancel = o.screen.Subscribe(o.layer, o.handle)
	return nil
}

// Hide unmounts the overlay.
func (o *Overlay) Hide() error {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.dragging = false
	return o.screen.Unmount(o.layer)
}

func (o *Overlay) handle(ev component.Event) bool {
	switch ev.Kind {
	case component.Tap:
		if err := o.states.SetState(component.PanTyping); err != nil {
			slog.Warn("pan overlay transition failed", "err", err)
		}
		return true
	case component.PointerDown:
		o.dragging = true
		o.last = ev.Point
		return true
	case component.PointerMove:
		if !o.dragging {
			return false
		}
		// The display follows the finger.
		o.screen.ScrollBy(o.last.Sub(ev.Point))
		o.last = ev.Point
		return true
	case component.PointerUp:
		if !o.dragging {
			return false
		}
		o.dragging = false
		return true
	}
	return false
}

// Indicators returns the arrow rectangles within r: up, down, left, right.
func Indicators(r image.Rectangle) [4]image.Rectangle {
	c := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	half := indicatorSize / 2
	box := func(x, y int) image.Rectangle {
		return image.Rect(x-half, y-half, x+half, y+half)
	}
	return [4]image.Rectangle{
		box(c.X, r.Min.Y+half),
		box(c.X, r.Max.Y-half),
		box(r.Min.X+half, c.Y),
		box(r.Max.X-half, c.Y),
	}
}

func paintIndicators(dst draw.Image, r image.Rectangle) {
	icons := [4]string{render.IconArrowUp, render.IconArrowDown, render.IconArrowLeft, render.IconArrowRight}
	for i, box := range Indicators(r) {
		render.SVGIcon(dst, box, icons[i], render.ColorIdle)
	}
}
