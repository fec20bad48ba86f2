// Package deck drives the touch UI from a Stream Deck: the touch strip is
// the viewport, the keys select interaction states and the dials nudge the
// magnifier.
package deck

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/compositor"
	"github.com/phinze/touchdeck/internal/loop"
	"github.com/phinze/touchdeck/internal/screen"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"
	"rafaelmartins.com/p/streamdeck"
)

// nudgeStep is how far one dial detent moves the magnifier, in pixels.
const nudgeStep = 8

// Binding assigns a state to a key.
type Binding struct {
	State component.State
	Label string
	Icon  string
}

// Driver connects a device to the UI loop.
type Driver struct {
	device   *streamdeck.Device
	loop     *loop.Loop
	ui       *compositor.UI
	screen   *screen.Screen
	interval time.Duration
	strip    image.Rectangle

	bindings []Binding
	keyFace  font.Face
	keyDirty atomic.Bool
}

// Viewport returns the touch strip rectangle, which becomes the UI's
// viewport.
func Viewport(device *streamdeck.Device) (image.Rectangle, error) {
	if !device.GetTouchStripSupported() {
		return image.Rectangle{}, fmt.Errorf("%s has no touch strip", device.GetModelName())
	}
	return device.GetTouchStripImageRectangle()
}

// New creates a driver. interval sets how often the strip is redrawn.
func New(device *streamdeck.Device, lp *loop.Loop, ui *compositor.UI, scr *screen.Screen, interval time.Duration) (*Driver, error) {
	strip, err := Viewport(device)
	if err != nil {
		return nil, err
	}
	face, err := newKeyFace()
	if err != nil {
		return nil, err
	}

	d := &Driver{
		device:   device,
		loop:     lp,
		ui:       ui,
		screen:   scr,
		interval: interval,
		strip:    strip,
		bindings: DefaultBindings(),
		keyFace:  face,
	}
	d.keyDirty.Store(true)
	ui.States.Watch(func(from, to component.State) {
		d.keyDirty.Store(true)
	})
	return d, nil
}

// Run wires device events into the loop and redraws the device until ctx
// is cancelled or the device fails.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.setupEventHandlers(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// Device listener; Listen only returns once the device is closed or
	// fails.
	errChan := make(chan error, 1)
	go func() {
		if err := d.device.Listen(errChan); err != nil {
			select {
			case errChan <- err:
			default:
			}
		}
	}()
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errChan:
			return fmt.Errorf("device listener: %w", err)
		}
	})

	g.Go(func() error {
		return d.renderLoop(ctx)
	})

	return g.Wait()
}

// setupEventHandlers registers device handlers that post into the loop.
func (d *Driver) setupEventHandlers() error {
	var errs firstError
	record := errs.record

	// Key handlers
	record(d.device.ForEachKey(func(key streamdeck.KeyID) error {
		idx := int(key - streamdeck.KEY_1)
		if idx >= len(d.bindings) {
			return d.device.ClearKey(key)
		}
		binding := d.bindings[idx]
		err := d.device.AddKeyHandler(key, func(dev *streamdeck.Device, k *streamdeck.Key) error {
			d.post(func() {
				if err := d.ui.States.SetState(binding.State); err != nil {
					slog.Warn("key transition failed", "key", k, "to", binding.State, "err", err)
				}
			})
			k.WaitForRelease()
			return nil
		})
		return err
	}))

	// Dials: press returns to Interactive, rotation nudges the magnifier.
	if d.device.GetDialCount() > 0 {
		axis := 0
		record(d.device.ForEachDial(func(dial streamdeck.DialID) error {
			delta := image.Pt(nudgeStep, 0)
			if axis%2 == 1 {
				delta = image.Pt(0, nudgeStep)
			}
			axis++

			record(d.device.AddDialRotateHandler(dial, func(dev *streamdeck.Device, di *streamdeck.Dial, ticks int8) error {
				d.post(func() { d.nudge(delta.Mul(int(ticks))) })
				return nil
			}))
			err := d.device.AddDialSwitchHandler(dial, func(dev *streamdeck.Device, di *streamdeck.Dial) error {
				d.post(func() {
					if err := d.ui.States.SetState(component.Interactive); err != nil {
						slog.Warn("dial transition failed", "err", err)
					}
				})
				di.WaitForRelease()
				return nil
			})
			return err
		}))
	}

	// Touch strip: taps are taps, swipes are drags.
	record(d.device.AddTouchStripTouchHandler(func(dev *streamdeck.Device, typ streamdeck.TouchStripTouchType, p image.Point) error {
		d.post(func() {
			d.screen.Dispatch(component.Event{Kind: component.Tap, Point: p.Sub(d.strip.Min)})
		})
		return nil
	}))

	record(d.device.AddTouchStripSwipeHandler(func(dev *streamdeck.Device, origin, dest image.Point) error {
		d.post(func() {
			for _, ev := range SwipeEvents(origin.Sub(d.strip.Min), dest.Sub(d.strip.Min)) {
				d.screen.Dispatch(ev)
			}
		})
		return nil
	}))

	if errs.err != nil {
		return fmt.Errorf("failed to set up device handlers: %w", errs.err)
	}
	return nil
}

// firstError keeps the first non-nil error it is given.
type firstError struct {
	err error
}

func (f *firstError) record(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

// SwipeEvents expands a swipe into the pointer gesture it stands for.
func SwipeEvents(origin, dest image.Point) []component.Event {
	return []component.Event{
		{Kind: component.PointerDown, Point: origin},
		{Kind: component.PointerMove, Point: dest},
		{Kind: component.PointerUp, Point: dest},
	}
}

// nudge moves the magnifier by delta while it is shown.
func (d *Driver) nudge(delta image.Point) {
	if s, _ := d.ui.States.State(); s != component.Magnifier {
		return
	}
	d.ui.Magnifier.MoveTo(d.ui.Magnifier.Position().Add(delta))
}

func (d *Driver) post(fn func()) {
	if err := d.loop.Post(fn); err != nil {
		slog.Debug("dropped device event", "err", err)
	}
}

// renderLoop runs the periodic render cycle.
func (d *Driver) renderLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Initial render
	d.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.render()
		}
	}
}

// render snapshots the UI on the loop and pushes it to the device.
func (d *Driver) render() {
	var frame *image.RGBA
	var state component.State
	err := d.loop.Do(func() error {
		frame = d.ui.Frame()
		state, _ = d.ui.States.State()
		return nil
	})
	if err != nil {
		slog.Debug("skipped render", "err", err)
		return
	}

	d.renderStrip(frame)
	if d.keyDirty.Swap(false) {
		d.renderKeys(state)
	}
}
