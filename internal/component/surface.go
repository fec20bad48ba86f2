package component

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrAlreadyMounted is returned when mounting a surface twice.
	ErrAlreadyMounted = errors.New("surface already mounted")
	// ErrNotMounted is returned when unmounting a surface that is not mounted.
	ErrNotMounted = errors.New("surface not mounted")
)

// Surface is a visual layer that can be mounted on a Screen.
type Surface interface {
	// Bounds returns the screen-space rectangle the surface covers,
	// including any translation applied to it.
	Bounds() image.Rectangle

	// Draw paints the surface onto dst, which is in screen coordinates.
	Draw(dst draw.Image)
}

// EventKind identifies an input event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Tap
	Blur
)

// Event is a single input event in screen coordinates. Blur events carry
// no position.
type Event struct {
	Kind  EventKind
	Point image.Point
}

// Handler receives events for a subscribed surface. Returning true stops
// the event from reaching surfaces further down the stack.
type Handler func(ev Event) bool

// Screen is where components mount their surfaces and receive input.
// Subscriptions are per surface; the cancel func returned by Subscribe must
// be called when the component hides.
type Screen interface {
	Size() image.Point
	Mount(s Surface) error
	Unmount(s Surface) error
	Subscribe(s Surface, h Handler) (cancel func())
	Focus(s Surface)
	Blur(s Surface)

	// Scroll returns the display point shown at the viewport's top-left.
	Scroll() image.Point
	// ScrollBy scrolls the display under the viewport by delta and returns
	// the resulting offset.
	ScrollBy(delta image.Point) image.Point
	// ScrollIntoView scrolls just enough for r, in display coordinates, to
	// be visible and returns the resulting offset.
	ScrollIntoView(r image.Rectangle) image.Point
}

// Layer is a Surface with a fixed size, a movable translation and a paint
// function. The zero offset places the layer at its rectangle.
type Layer struct {
	Name string

	rect   image.Rectangle
	offset image.Point
	paint  func(dst draw.Image, r image.Rectangle)
}

// NewLayer creates a layer covering rect. paint may be nil for an invisible
// hit target.
func NewLayer(name string, rect image.Rectangle, paint func(dst draw.Image, r image.Rectangle)) *Layer {
	return &Layer{Name: name, rect: rect, paint: paint}
}

// Bounds returns the translated rectangle.
func (l *Layer) Bounds() image.Rectangle {
	return l.rect.Add(l.offset)
}

// Size returns the layer's width and height.
func (l *Layer) Size() image.Point {
	return l.rect.Size()
}

// SetRect replaces the untranslated rectangle.
func (l *Layer) SetRect(r image.Rectangle) {
	l.rect = r
}

// Translate sets the visual translation applied on top of the rectangle.
func (l *Layer) Translate(p image.Point) {
	l.offset = p
}

// Offset returns the current translation.
func (l *Layer) Offset() image.Point {
	return l.offset
}

// Draw implements Surface.
func (l *Layer) Draw(dst draw.Image) {
	if l.paint == nil {
		return
	}
	l.paint(dst, l.Bounds())
}

func (l *Layer) String() string {
	return l.Name
}
