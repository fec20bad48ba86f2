package component

import "image"

// Draggable adds pointer-drag tracking to a layer. The layer is kept inside
// the viewport and every move reports the clamped position through OnMove.
//
// Draggable is meant to be embedded by value in the component that owns the
// layer; that component routes pointer events to HandlePointer.
type Draggable struct {
	// OnMove is called with the clamped top-left position after every move.
	// A nil OnMove is a no-op.
	OnMove func(x, y int)

	layer  *Layer
	screen Screen

	active bool
	grab   image.Point
}

// NewDraggable makes layer draggable within screen's viewport.
func NewDraggable(layer *Layer, screen Screen) Draggable {
	return Draggable{layer: layer, screen: screen}
}

// HandlePointer processes pointer down, move and up events. It reports
// whether the event was consumed by the drag.
func (d *Draggable) HandlePointer(ev Event) bool {
	switch ev.Kind {
	case PointerDown:
		if !ev.Point.In(d.layer.Bounds()) {
			return false
		}
		d.active = true
		d.grab = ev.Point.Sub(d.layer.Bounds().Min)
		return true

	case PointerMove:
		if !d.active {
			return false
		}
		d.MoveTo(ev.Point.Sub(d.grab))
		return true

	case PointerUp:
		if !d.active {
			return false
		}
		d.active = false
		return true
	}
	return false
}

// MoveTo places the layer at p, clamped to
// [0, viewportWidth-width] x [0, viewportHeight-height], and reports the
// clamped position to OnMove.
func (d *Draggable) MoveTo(p image.Point) image.Point {
	pos := clampPosition(p, d.layer.Size(), d.screen.Size())
	d.layer.Translate(pos)
	if d.OnMove != nil {
		d.OnMove(pos.X, pos.Y)
	}
	return pos
}

// Position returns the layer's current top-left position.
func (d *Draggable) Position() image.Point {
	return d.layer.Offset()
}

// Dragging reports whether a drag gesture is in progress.
func (d *Draggable) Dragging() bool {
	return d.active
}

// Cancel ends any drag in progress without moving the layer.
func (d *Draggable) Cancel() {
	d.active = false
}

func clampPosition(p, size, viewport image.Point) image.Point {
	maxX := max(viewport.X-size.X, 0)
	maxY := max(viewport.Y-size.Y, 0)
	return image.Pt(min(max(p.X, 0), maxX), min(max(p.Y, 0), maxY))
}
