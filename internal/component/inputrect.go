package component

import "sync"

// Rect is a screen-space rectangle with fractional coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// InputRect holds the expected input rectangle: where native text input
// should appear. It has a single writer (the magnifier) and readers that
// always observe the latest write.
type InputRect struct {
	mu sync.Mutex
	r  Rect
}

// NewInputRect returns an InputRect at the origin with a 1x1 size.
func NewInputRect() *InputRect {
	return &InputRect{r: Rect{Width: 1, Height: 1}}
}

// Set publishes a new rectangle.
func (ir *InputRect) Set(r Rect) {
	ir.mu.Lock()
	ir.r = r
	ir.mu.Unlock()
}

// Get returns the most recently published rectangle.
func (ir *InputRect) Get() Rect {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	return ir.r
}
