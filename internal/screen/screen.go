// Package screen implements the surface stack components mount onto: it
// orders surfaces, routes input to them and composites them into an image.
package screen

import (
	"fmt"
	"image"
	"slices"

	"github.com/phinze/touchdeck/internal/component"
	"golang.org/x/image/draw"
)

type subscription struct {
	handler component.Handler
	active  bool
}

// Screen is a viewport with an ordered stack of mounted surfaces. Surfaces
// mounted later sit on top. It is not safe for concurrent use; callers run
// it on the UI loop.
type Screen struct {
	size image.Point

	// content reports the size of the scrollable display; scroll is the
	// display point shown at the viewport's top-left.
	content func() image.Point
	scroll  image.Point

	mounted []component.Surface
	subs    map[component.Surface][]*subscription
	focused component.Surface
}

// New creates a screen with the given viewport size.
func New(size image.Point) *Screen {
	return &Screen{
		size: size,
		subs: make(map[component.Surface][]*subscription),
	}
}

// Size returns the viewport size.
func (s *Screen) Size() image.Point {
	return s.size
}

// Resize changes the viewport size.
func (s *Screen) Resize(size image.Point) {
	s.size = size
}

// SetContent sets the function reporting the scrollable display size. It
// is consulted on every scroll so size changes take effect immediately.
// Without one the display is never scrolled.
func (s *Screen) SetContent(size func() image.Point) {
	s.content = size
}

// Scroll returns the current scroll offset, clamped to the display size.
func (s *Screen) Scroll() image.Point {
	s.scroll = s.clamp(s.scroll)
	return s.scroll
}

// ScrollTo scrolls so that p is at the viewport's top-left, clamped to
// [0, content-viewport] on each axis, and returns the resulting offset.
func (s *Screen) ScrollTo(p image.Point) image.Point {
	s.scroll = s.clamp(p)
	return s.scroll
}

// ScrollBy scrolls by delta and returns the resulting offset.
func (s *Screen) ScrollBy(delta image.Point) image.Point {
	return s.ScrollTo(s.Scroll().Add(delta))
}

// ScrollIntoView scrolls the least distance that makes r visible. When r
// is larger than the viewport its top-left edge wins.
func (s *Screen) ScrollIntoView(r image.Rectangle) image.Point {
	cur := s.Scroll()
	return s.ScrollTo(image.Pt(
		intoView(cur.X, s.size.X, r.Min.X, r.Max.X),
		intoView(cur.Y, s.size.Y, r.Min.Y, r.Max.Y),
	))
}

// intoView returns the offset along one axis that shows [lo, hi] in a
// window of length n currently at off.
func intoView(off, n, lo, hi int) int {
	switch {
	case lo < off, hi-lo > n:
		return lo
	case hi > off+n:
		return hi - n
	}
	return off
}

func (s *Screen) clamp(p image.Point) image.Point {
	if s.content == nil {
		return image.Point{}
	}
	limit := s.content().Sub(s.size)
	return image.Pt(
		max(0, min(p.X, limit.X)),
		max(0, min(p.Y, limit.Y)),
	)
}

// Mount places surface on top of the stack.
func (s *Screen) Mount(surface component.Surface) error {
	if slices.Contains(s.mounted, surface) {
		return fmt.Errorf("mount %v: %w", surface, component.ErrAlreadyMounted)
	}
	s.mounted = append(s.mounted, surface)
	return nil
}

// Unmount removes surface from the stack. A focused surface loses focus
// without a blur event.
func (s *Screen) Unmount(surface component.Surface) error {
	i := slices.Index(s.mounted, surface)
	if i < 0 {
		return fmt.Errorf("unmount %v: %w", surface, component.ErrNotMounted)
	}
	s.mounted = slices.Delete(s.mounted, i, i+1)
	if s.focused == surface {
		s.focused = nil
	}
	return nil
}

// Mounted returns the stack, bottom first.
func (s *Screen) Mounted() []component.Surface {
	return slices.Clone(s.mounted)
}

// Subscribe delivers events targeting surface to h until cancel is called.
func (s *Screen) Subscribe(surface component.Surface, h component.Handler) (cancel func()) {
	sub := &subscription{handler: h, active: true}
	s.subs[surface] = append(s.subs[surface], sub)

	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		subs := s.subs[surface]
		if i := slices.Index(subs, sub); i >= 0 {
			subs = slices.Delete(subs, i, i+1)
		}
		if len(subs) == 0 {
			delete(s.subs, surface)
		} else {
			s.subs[surface] = subs
		}
	}
}

// Subscribers returns the number of live subscriptions across all surfaces.
func (s *Screen) Subscribers() int {
	n := 0
	for _, subs := range s.subs {
		n += len(subs)
	}
	return n
}

// Focus gives surface input focus, blurring the previously focused one.
func (s *Screen) Focus(surface component.Surface) {
	if s.focused == surface {
		return
	}
	prev := s.focused
	s.focused = surface
	if prev != nil {
		s.deliver(prev, component.Event{Kind: component.Blur})
	}
}

// Blur removes focus from surface if it has it.
func (s *Screen) Blur(surface component.Surface) {
	if s.focused != surface {
		return
	}
	s.focused = nil
	s.deliver(surface, component.Event{Kind: component.Blur})
}

// Focused returns the focused surface, or nil.
func (s *Screen) Focused() component.Surface {
	return s.focused
}

// Dispatch routes an input event and reports whether a handler consumed it.
//
// Taps and pointer-downs go to the topmost surfaces under the point; moves
// and pointer-ups go to every mounted surface, top first, so a drag keeps
// tracking once the pointer leaves its surface. A tap outside the focused
// surface blurs it first; drags do not, so the display can be scrolled
// while typing.
func (s *Screen) Dispatch(ev component.Event) bool {
	switch ev.Kind {
	case component.Tap, component.PointerDown:
		if ev.Kind == component.Tap && s.focused != nil && !ev.Point.In(s.focused.Bounds()) {
			s.Blur(s.focused)
		}
		for _, surface := range s.topDown() {
			if !s.isMounted(surface) || !ev.Point.In(surface.Bounds()) {
				continue
			}
			if s.deliver(surface, ev) {
				return true
			}
		}
	case component.PointerMove, component.PointerUp:
		for _, surface := range s.topDown() {
			if !s.isMounted(surface) {
				continue
			}
			if s.deliver(surface, ev) {
				return true
			}
		}
	}
	return false
}

// Composite draws every mounted surface onto dst, bottom first.
func (s *Screen) Composite(dst draw.Image) {
	for _, surface := range s.mounted {
		surface.Draw(dst)
	}
}

func (s *Screen) isMounted(surface component.Surface) bool {
	return slices.Contains(s.mounted, surface)
}

func (s *Screen) topDown() []component.Surface {
	stack := slices.Clone(s.mounted)
	slices.Reverse(stack)
	return stack
}

// deliver calls the surface's handlers in subscription order. Handlers
// cancelled by an earlier handler in the same delivery are skipped.
func (s *Screen) deliver(surface component.Surface, ev component.Event) bool {
	for _, sub := range slices.Clone(s.subs[surface]) {
		if !sub.active {
			continue
		}
		if sub.handler(ev) {
			return true
		}
	}
	return false
}
