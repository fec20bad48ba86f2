// Package remote defines the remote-display session the touch UI drives and
// an in-memory framebuffer implementation of it.
package remote

import "image"

// Session is the facade over a remote desktop connection.
type Session interface {
	// Width and Height return the remote display's full resolution.
	Width() int
	Height() int

	// Scale returns the local display scale; SetScale changes it.
	Scale() float64
	SetScale(factor float64)

	// Flatten returns a static snapshot of the current display contents.
	Flatten() image.Image

	// SendKeyEvent sends a key press or release for keysym.
	SendKeyEvent(pressed bool, keysym uint32) error
}

// KeyEvent is a key event sent to the remote display.
type KeyEvent struct {
	Pressed bool
	Keysym  uint32
}
