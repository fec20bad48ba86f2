package deck

import (
	"image"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/render"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"rafaelmartins.com/p/streamdeck"
)

// DefaultBindings maps the first five keys to the interaction states.
func DefaultBindings() []Binding {
	return []Binding{
		{State: component.Interactive, Label: "Touch", Icon: render.IconPointer},
		{State: component.OnScreenKeyboard, Label: "Keys", Icon: render.IconKeyboard},
		{State: component.Magnifier, Label: "Zoom", Icon: render.IconMagnifier},
		{State: component.Pan, Label: "Pan", Icon: render.IconPan},
		{State: component.PanTyping, Label: "Type", Icon: render.IconType},
	}
}

func newKeyFace() (font.Face, error) {
	return render.NewFace(12, true)
}

// renderStrip fits frame into the touch strip and sends it to the device.
func (d *Driver) renderStrip(frame image.Image) {
	d.device.SetTouchStripImage(StripImage(frame, d.strip))
}

// StripImage fits frame into strip, scaling only when the sizes differ.
func StripImage(frame image.Image, strip image.Rectangle) image.Image {
	if frame.Bounds().Size() == strip.Size() {
		return frame
	}
	img := image.NewRGBA(strip)
	draw.CatmullRom.Scale(img, strip, frame, frame.Bounds(), draw.Src, nil)
	return img
}

// renderKeys draws every bound key, highlighting the active state.
func (d *Driver) renderKeys(active component.State) {
	keyRect, err := d.device.GetKeyImageRectangle()
	if err != nil {
		return
	}
	for i, img := range KeyImages(d.bindings, active, keyRect.Dx(), d.keyFace) {
		d.device.SetKeyImage(streamdeck.KEY_1+streamdeck.KeyID(i), img)
	}
}

// KeyImages renders one key image per binding.
func KeyImages(bindings []Binding, active component.State, size int, face font.Face) []image.Image {
	images := make([]image.Image, len(bindings))
	for i, b := range bindings {
		fg, bg := render.ColorIdle, render.ColorKeyBg
		if b.State == active {
			fg, bg = render.ColorKeyBg, render.ColorActive
		}
		images[i] = render.Key(size, b.Icon, b.Label, face, fg, bg)
	}
	return images
}
