package osk

import (
	"image"
	"testing"
	"time"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/loop"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/phinze/touchdeck/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWidget struct {
	element *component.Layer
	resizes []int
	down    func(uint32)
	up      func(uint32)
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{element: component.NewLayer("keyboard", image.Rect(0, 0, 0, 40), nil)}
}

func (w *fakeWidget) Element() *component.Layer { return w.element }

func (w *fakeWidget) Resize(width int) {
	w.resizes = append(w.resizes, width)
	w.element.SetRect(image.Rect(0, 0, width, 40))
}

func (w *fakeWidget) HandleEvent(ev component.Event) bool { return false }
func (w *fakeWidget) OnKeyDown(fn func(uint32))           { w.down = fn }
func (w *fakeWidget) OnKeyUp(fn func(uint32))             { w.up = fn }

type fixture struct {
	screen  *screen.Screen
	clock   *loop.Manual
	session *remote.Framebuffer
	widget  *fakeWidget
	osk     *OnScreenKeyboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		screen:  screen.New(image.Pt(800, 100)),
		clock:   loop.NewManual(),
		session: remote.NewFramebuffer(10, 10),
		widget:  newFakeWidget(),
	}
	o, err := New(f.screen, f.session, f.clock, f.widget, 30*time.Millisecond)
	require.NoError(t, err)
	f.osk = o
	return f
}

func TestShow_ChecksSizeImmediately(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.osk.Show())

	assert.Equal(t, []int{800}, f.widget.resizes)
	assert.Equal(t, image.Rect(0, 60, 800, 100), f.widget.element.Bounds())
	assert.Equal(t, 1, f.clock.Active())
}

func TestPolling_UnchangedWidth(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.osk.Show())

	f.clock.Advance(90 * time.Millisecond)
	assert.Equal(t, []int{800}, f.widget.resizes)
}

func TestPolling_WidthChangesOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.osk.Show())

	f.clock.Advance(30 * time.Millisecond)
	f.screen.Resize(image.Pt(640, 120))
	f.clock.Advance(90 * time.Millisecond)

	assert.Equal(t, []int{800, 640}, f.widget.resizes)
	assert.Equal(t, image.Rect(0, 80, 640, 120), f.widget.element.Bounds())
}

func TestHide_CancelsTimer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.osk.Show())
	require.NoError(t, f.osk.Hide())

	assert.Zero(t, f.clock.Active())
	assert.Empty(t, f.screen.Mounted())
	assert.Zero(t, f.screen.Subscribers())

	f.screen.Resize(image.Pt(320, 100))
	f.clock.Advance(time.Second)
	assert.Equal(t, []int{800}, f.widget.resizes)
}

func TestShowHideCycles_OneTimerAtATime(t *testing.T) {
	f := newFixture(t)
	for range 3 {
		require.NoError(t, f.osk.Show())
		assert.Equal(t, 1, f.clock.Active())
		require.NoError(t, f.osk.Hide())
		assert.Zero(t, f.clock.Active())
	}
}

func TestShow_MountFailureStartsNoTimer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.screen.Mount(f.widget.element))

	assert.ErrorIs(t, f.osk.Show(), component.ErrAlreadyMounted)
	assert.Zero(t, f.clock.Active())
	assert.Zero(t, f.screen.Subscribers())
}

func TestKeyEventsForwarded(t *testing.T) {
	f := newFixture(t)

	f.widget.down(0x61)
	f.widget.up(0x61)

	assert.Equal(t, []remote.KeyEvent{
		{Pressed: true, Keysym: 0x61},
		{Pressed: false, Keysym: 0x61},
	}, f.session.Keys())
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(screen.New(image.Pt(1, 1)), nil, loop.NewManual(), newFakeWidget(), 0)
	assert.ErrorIs(t, err, component.ErrMissingSession)
}
