package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/config"
	"github.com/phinze/touchdeck/internal/keyboard"
	"github.com/phinze/touchdeck/internal/loop"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/phinze/touchdeck/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ui      *UI
	screen  *screen.Screen
	session *remote.Framebuffer
	clock   *loop.Manual
	kb      *keyboard.Keyboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Magnifier.Width = 200
	cfg.Magnifier.Height = 200

	kb, err := keyboard.New(cfg.Keyboard.Layout)
	require.NoError(t, err)

	f := &fixture{
		screen:  screen.New(image.Pt(1000, 800)),
		session: remote.NewFramebuffer(2000, 1600),
		clock:   loop.NewManual(),
		kb:      kb,
	}
	f.ui, err = Build(cfg, Deps{
		Screen:    f.screen,
		Session:   f.session,
		Scheduler: f.clock,
		Keyboard:  kb,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) state(t *testing.T) component.State {
	t.Helper()
	s, ok := f.ui.States.State()
	require.True(t, ok)
	return s
}

func (f *fixture) tap(p image.Point) {
	f.screen.Dispatch(component.Event{Kind: component.Tap, Point: p})
}

func TestBuild_StartsInteractive(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, component.Interactive, f.state(t))
	assert.Empty(t, f.screen.Mounted())
	assert.Equal(t, 0.5, f.session.Scale())
}

func TestBuild_RequiresSession(t *testing.T) {
	_, err := Build(config.Default(), Deps{Screen: screen.New(image.Pt(1, 1))})
	assert.ErrorIs(t, err, component.ErrMissingSession)
}

func TestMagnifierToTyping(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.Magnifier))
	assert.Len(t, f.screen.Mounted(), 2)

	// Drag the window from the origin so its corner lands on (400, 300).
	f.screen.Dispatch(component.Event{Kind: component.PointerDown, Point: image.Pt(100, 100)})
	f.screen.Dispatch(component.Event{Kind: component.PointerMove, Point: image.Pt(500, 400)})
	f.screen.Dispatch(component.Event{Kind: component.PointerUp, Point: image.Pt(500, 400)})
	assert.Equal(t, component.Rect{X: 900, Y: 700, Width: 200, Height: 200}, f.ui.Input.Get())

	// Tapping the window starts typing where the window points.
	f.tap(image.Pt(500, 400))
	assert.Equal(t, component.PanTyping, f.state(t))
	assert.Equal(t, 1.0, f.session.Scale())

	// The display scrolls just far enough to show the input.
	assert.Equal(t, image.Pt(100, 100), f.screen.Scroll())
	assert.Equal(t, image.Rect(900, 700, 1100, 900), f.ui.NativeKeyboard.DisplayRect())
	assert.Equal(t, image.Rect(800, 600, 1000, 800), f.ui.NativeKeyboard.Bounds())
	assert.NotNil(t, f.screen.Focused())

	// Tapping outside the input dismisses the native keyboard.
	f.tap(image.Pt(10, 10))
	assert.Equal(t, component.Interactive, f.state(t))
	assert.Empty(t, f.screen.Mounted())
	assert.Zero(t, f.screen.Subscribers())
	assert.Equal(t, 0.5, f.session.Scale())
	assert.Equal(t, image.Point{}, f.screen.Scroll())
}

func TestTypingShowsMagnifiedRegion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.Magnifier))

	// Bottom-right corner of the viewport maps to the bottom-right of the
	// display.
	f.ui.Magnifier.MoveTo(image.Pt(800, 600))
	assert.Equal(t, component.Rect{X: 1800, Y: 1400, Width: 200, Height: 200}, f.ui.Input.Get())

	f.tap(image.Pt(900, 700))
	require.Equal(t, component.PanTyping, f.state(t))
	assert.Equal(t, image.Pt(1000, 800), f.screen.Scroll())
	assert.True(t, f.ui.NativeKeyboard.Bounds().Overlaps(image.Rectangle{Max: f.screen.Size()}))

	remote := f.session.Flatten()
	at := func(img image.Image, x, y int) color.RGBA {
		return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	}
	frame := f.ui.Frame()
	assert.Equal(t, at(remote, 1000, 800), at(frame, 0, 0))
	assert.Equal(t, at(remote, 1800, 1400), at(frame, 800, 600))
	assert.NotEqual(t, at(remote, 0, 0), at(frame, 0, 0))
}

func TestPanSwipeScrollsDisplay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.PanTyping))
	require.NotNil(t, f.screen.Focused())

	f.screen.Dispatch(component.Event{Kind: component.PointerDown, Point: image.Pt(700, 500)})
	f.screen.Dispatch(component.Event{Kind: component.PointerMove, Point: image.Pt(200, 300)})
	f.screen.Dispatch(component.Event{Kind: component.PointerUp, Point: image.Pt(200, 300)})

	// Typing survives the swipe.
	assert.Equal(t, component.PanTyping, f.state(t))
	assert.Equal(t, image.Pt(500, 200), f.screen.Scroll())
	assert.NotNil(t, f.screen.Focused())
}

func TestFailedShowDoesNotBlockLaterStates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.screen.Mount(f.kb.Element()))

	err := f.ui.States.SetState(component.OnScreenKeyboard)
	require.ErrorIs(t, err, component.ErrAlreadyMounted)

	require.NoError(t, f.ui.States.SetState(component.Magnifier))
	assert.Equal(t, component.Magnifier, f.state(t))
	require.NoError(t, f.ui.States.SetState(component.Pan))
	require.NoError(t, f.ui.States.SetState(component.Interactive))
	assert.Equal(t, []component.Surface{f.kb.Element()}, f.screen.Mounted())

	// Once the element is free again the keyboard comes up normally.
	require.NoError(t, f.screen.Unmount(f.kb.Element()))
	require.NoError(t, f.ui.States.SetState(component.OnScreenKeyboard))
	assert.Equal(t, 1, f.clock.Active())
}

func TestMagnifierBackgroundTapDismisses(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.Magnifier))

	f.tap(image.Pt(900, 700))
	assert.Equal(t, component.Interactive, f.state(t))
	assert.Empty(t, f.screen.Mounted())
}

func TestPanTapStartsTyping(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.Pan))
	assert.Equal(t, 1.0, f.session.Scale())
	assert.Len(t, f.screen.Mounted(), 1)

	f.tap(image.Pt(500, 500))
	assert.Equal(t, component.PanTyping, f.state(t))
	assert.Len(t, f.screen.Mounted(), 2)
	assert.Equal(t, 1.0, f.session.Scale())
}

func TestLeavingTypingProgrammatically(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.PanTyping))

	// Hiding the native keyboard blurs it, which must not bounce the UI to
	// Interactive.
	require.NoError(t, f.ui.States.SetState(component.Pan))
	assert.Equal(t, component.Pan, f.state(t))
	assert.Nil(t, f.screen.Focused())
	assert.Len(t, f.screen.Mounted(), 1)
}

func TestOnScreenKeyboardLifecycle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ui.States.SetState(component.OnScreenKeyboard))
	assert.Equal(t, 1, f.clock.Active())
	require.Len(t, f.screen.Mounted(), 1)
	assert.Equal(t, image.Rect(0, 760, 1000, 800), f.screen.Mounted()[0].Bounds())

	// Tap the first key ("q").
	f.tap(image.Pt(5, 780))
	assert.Equal(t, []remote.KeyEvent{{Pressed: true, Keysym: 'q'}, {Pressed: false, Keysym: 'q'}}, f.session.Keys())

	require.NoError(t, f.ui.States.SetState(component.Magnifier))
	assert.Zero(t, f.clock.Active())
}

func TestFrame(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.States.SetState(component.Magnifier))

	img := f.ui.Frame()
	assert.Equal(t, image.Rect(0, 0, 1000, 800), img.Bounds())
}
