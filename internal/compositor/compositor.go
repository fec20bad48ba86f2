// Package compositor assembles the touch UI: it builds every overlay,
// registers each under the states it belongs to and enters the initial
// state.
package compositor

import (
	"errors"
	"fmt"
	"image"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/components/magnifier"
	"github.com/phinze/touchdeck/internal/components/nativekbd"
	"github.com/phinze/touchdeck/internal/components/osk"
	"github.com/phinze/touchdeck/internal/components/pan"
	"github.com/phinze/touchdeck/internal/components/zoom"
	"github.com/phinze/touchdeck/internal/config"
	"github.com/phinze/touchdeck/internal/coordinator"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/phinze/touchdeck/internal/render"
	"github.com/phinze/touchdeck/internal/screen"
	"golang.org/x/image/draw"
)

// Deps are the collaborators the UI runs against.
type Deps struct {
	Screen    *screen.Screen
	Session   remote.Session
	Scheduler component.Scheduler
	Keyboard  osk.Widget
}

// UI is the assembled touch UI.
type UI struct {
	States *coordinator.StateManager
	Input  *component.InputRect

	Magnifier      *magnifier.Magnifier
	Zoom           *zoom.ZoomedDisplay
	Pan            *pan.Overlay
	NativeKeyboard *nativekbd.NativeKeyboard
	Keyboard       *osk.OnScreenKeyboard

	screen  *screen.Screen
	session remote.Session
}

// Build creates and registers every component and enters the Interactive
// state.
func Build(cfg *config.Config, deps Deps) (*UI, error) {
	if deps.Session == nil {
		return nil, fmt.Errorf("compositor: %w", component.ErrMissingSession)
	}
	if deps.Screen == nil || deps.Scheduler == nil || deps.Keyboard == nil {
		return nil, errors.New("compositor: screen, scheduler and keyboard are required")
	}

	ui := &UI{
		States:  coordinator.New(component.AllStates...),
		Input:   component.NewInputRect(),
		screen:  deps.Screen,
		session: deps.Session,
	}

	var err error
	magSize := image.Pt(cfg.Magnifier.Width, cfg.Magnifier.Height)
	if ui.Magnifier, err = magnifier.New(deps.Screen, deps.Session, ui.States, ui.Input, magSize); err != nil {
		return nil, err
	}
	if ui.Zoom, err = zoom.New(deps.Session); err != nil {
		return nil, err
	}
	if ui.Pan, err = pan.New(deps.Screen, ui.States); err != nil {
		return nil, err
	}
	if ui.NativeKeyboard, err = nativekbd.New(deps.Screen, ui.States, ui.Input); err != nil {
		return nil, err
	}
	if ui.Keyboard, err = osk.New(deps.Screen, deps.Session, deps.Scheduler, deps.Keyboard, cfg.Keyboard.PollInterval); err != nil {
		return nil, err
	}

	registrations := []struct {
		c      component.Component
		states []component.State
	}{
		{ui.Magnifier, []component.State{component.Magnifier}},
		{ui.Zoom, []component.State{component.Pan, component.PanTyping}},
		{ui.Pan, []component.State{component.Pan, component.PanTyping}},
		{ui.NativeKeyboard, []component.State{component.PanTyping}},
		{ui.Keyboard, []component.State{component.OnScreenKeyboard}},
	}
	for _, r := range registrations {
		if err := ui.States.RegisterComponent(r.c, r.states...); err != nil {
			return nil, err
		}
	}

	deps.Screen.SetContent(func() image.Point {
		return render.Scaled(deps.Session.Width(), deps.Session.Height(), deps.Session.Scale())
	})

	scale := cfg.Display.Scale
	if scale == 0 {
		scale = render.FitScale(deps.Session.Width(), deps.Session.Height(), deps.Screen.Size())
	}
	deps.Session.SetScale(scale)

	if err := ui.States.SetState(component.Interactive); err != nil {
		return nil, err
	}
	return ui, nil
}

// Render draws the remote display at its current scale and scroll offset
// with the mounted overlays on top.
func (ui *UI) Render(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{render.ColorBackground}, image.Point{}, draw.Src)
	render.Display(dst, ui.session.Flatten(), ui.session.Scale(), ui.screen.Scroll())
	ui.screen.Composite(dst)
}

// Frame renders into a new image the size of the viewport.
func (ui *UI) Frame() *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: ui.screen.Size()})
	ui.Render(img)
	return img
}
