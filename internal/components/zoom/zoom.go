// Package zoom provides ZoomedDisplay, a pseudo-component with no surface
// that forces the remote display to a 1:1 scale while shown.
package zoom

import (
	"fmt"
	"log/slog"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/remote"
)

// ZoomedDisplay remembers the display scale on Show and restores it on Hide.
// Only one scale is remembered: a second Show before Hide overwrites it.
type ZoomedDisplay struct {
	session  remote.Session
	oldScale float64
}

// New creates a ZoomedDisplay for session.
func New(session remote.Session) (*ZoomedDisplay, error) {
	if session == nil {
		return nil, fmt.Errorf("zoomed display: %w", component.ErrMissingSession)
	}
	return &ZoomedDisplay{session: session}, nil
}

// Show saves the current scale and switches to 1.0.
func (z *ZoomedDisplay) Show() error {
	if z.session == nil {
		return fmt.Errorf("zoomed display: %w", component.ErrMissingSession)
	}
	z.oldScale = z.session.Scale()
	z.session.SetScale(1.0)
	slog.Debug("display zoomed", "from", z.oldScale)
	return nil
}

// Hide restores the saved scale.
func (z *ZoomedDisplay) Hide() error {
	if z.session == nil {
		return fmt.Errorf("zoomed display: %w", component.ErrMissingSession)
	}
	z.session.SetScale(z.oldScale)
	return nil
}
