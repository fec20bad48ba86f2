// Package keyboard implements a single-row virtual keyboard widget. Keys
// share the row width evenly and send X11 keysyms.
package keyboard

import (
	"fmt"
	"image"
	"image/color"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/render"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Key is one key of a layout.
type Key struct {
	Label  string `toml:"label"`
	Keysym uint32 `toml:"keysym"`
}

// Layout is a named row of keys.
type Layout struct {
	Name   string
	Height int
	Keys   []Key
}

// Common keysyms
const (
	KeysymBackSpace = 0xff08
	KeysymTab       = 0xff09
	KeysymReturn    = 0xff0d
	KeysymEscape    = 0xff1b
	KeysymLeft      = 0xff51
	KeysymUp        = 0xff52
	KeysymRight     = 0xff53
	KeysymDown      = 0xff54
)

// Layouts are the built-in layouts by resource identifier.
var Layouts = map[string]Layout{
	"en-us-qwerty": {
		Name:   "en-us-qwerty",
		Height: 40,
		Keys: append(letters("qwertyuiop"),
			Key{Label: "Bksp", Keysym: KeysymBackSpace},
			Key{Label: "Enter", Keysym: KeysymReturn},
		),
	},
	"en-us-nav": {
		Name:   "en-us-nav",
		Height: 40,
		Keys: []Key{
			{Label: "Esc", Keysym: KeysymEscape},
			{Label: "Tab", Keysym: KeysymTab},
			{Label: "Left", Keysym: KeysymLeft},
			{Label: "Up", Keysym: KeysymUp},
			{Label: "Down", Keysym: KeysymDown},
			{Label: "Right", Keysym: KeysymRight},
			{Label: "Space", Keysym: ' '},
			{Label: "Enter", Keysym: KeysymReturn},
		},
	},
}

// letters maps printable Latin-1 characters to keys; their keysyms equal
// their code points.
func letters(s string) []Key {
	keys := make([]Key, 0, len(s))
	for _, r := range s {
		keys = append(keys, Key{Label: string(r), Keysym: uint32(r)})
	}
	return keys
}

var (
	colorKeyFace    = color.RGBA{60, 60, 60, 255}
	colorKeyPressed = color.RGBA{0, 120, 170, 255}
	colorKeyLabel   = color.RGBA{230, 230, 230, 255}
)

// Keyboard is the widget. It is driven from the UI loop.
type Keyboard struct {
	layout  Layout
	face    font.Face
	element *component.Layer

	pressed int
	onDown  func(uint32)
	onUp    func(uint32)
}

// New creates a keyboard for the layout with the given resource
// identifier.
func New(id string) (*Keyboard, error) {
	layout, ok := Layouts[id]
	if !ok {
		return nil, fmt.Errorf("unknown keyboard layout %q", id)
	}
	return NewWithLayout(layout)
}

// NewWithLayout creates a keyboard for a custom layout.
func NewWithLayout(layout Layout) (*Keyboard, error) {
	if len(layout.Keys) == 0 {
		return nil, fmt.Errorf("keyboard layout %q has no keys", layout.Name)
	}
	if layout.Height <= 0 {
		layout.Height = 40
	}

	face, err := render.NewFace(float64(layout.Height)/2.5, false)
	if err != nil {
		return nil, err
	}

	k := &Keyboard{layout: layout, face: face, pressed: -1}
	k.element = component.NewLayer("keyboard-container", image.Rectangle{}, k.paint)
	return k, nil
}

// Element implements osk.Widget.
func (k *Keyboard) Element() *component.Layer {
	return k.element
}

// Resize implements osk.Widget.
func (k *Keyboard) Resize(width int) {
	k.element.SetRect(image.Rect(0, 0, width, k.layout.Height))
}

// OnKeyDown implements osk.Widget.
func (k *Keyboard) OnKeyDown(fn func(keysym uint32)) {
	k.onDown = fn
}

// OnKeyUp implements osk.Widget.
func (k *Keyboard) OnKeyUp(fn func(keysym uint32)) {
	k.onUp = fn
}

// HandleEvent implements osk.Widget. A tap presses and releases a key; a
// pointer-down holds the key until the matching pointer-up.
func (k *Keyboard) HandleEvent(ev component.Event) bool {
	switch ev.Kind {
	case component.Tap:
		i := k.keyAt(ev.Point)
		if i < 0 {
			return false
		}
		k.down(i)
		k.up()
		return true

	case component.PointerDown:
		i := k.keyAt(ev.Point)
		if i < 0 {
			return false
		}
		k.down(i)
		return true

	case component.PointerUp:
		if k.pressed < 0 {
			return false
		}
		k.up()
		return true
	}
	return false
}

// KeyRect returns the bounds of key i in screen coordinates.
func (k *Keyboard) KeyRect(i int) image.Rectangle {
	b := k.element.Bounds()
	n := len(k.layout.Keys)
	x0 := b.Min.X + b.Dx()*i/n
	x1 := b.Min.X + b.Dx()*(i+1)/n
	return image.Rect(x0, b.Min.Y, x1, b.Max.Y)
}

func (k *Keyboard) keyAt(p image.Point) int {
	if !p.In(k.element.Bounds()) {
		return -1
	}
	for i := range k.layout.Keys {
		if p.In(k.KeyRect(i)) {
			return i
		}
	}
	return -1
}

func (k *Keyboard) down(i int) {
	if k.pressed >= 0 {
		k.up()
	}
	k.pressed = i
	if k.onDown != nil {
		k.onDown(k.layout.Keys[i].Keysym)
	}
}

func (k *Keyboard) up() {
	i := k.pressed
	k.pressed = -1
	if k.onUp != nil {
		k.onUp(k.layout.Keys[i].Keysym)
	}
}

func (k *Keyboard) paint(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, &image.Uniform{render.ColorBackground}, image.Point{}, draw.Src)

	for i, key := range k.layout.Keys {
		kr := k.KeyRect(i).Inset(2)
		bg := colorKeyFace
		if i == k.pressed {
			bg = colorKeyPressed
		}
		draw.Draw(dst, kr, &image.Uniform{bg}, image.Point{}, draw.Src)

		baseline := kr.Min.Y + (kr.Dy()+k.face.Metrics().Ascent.Ceil())/2
		render.TextCentered(dst, key.Label, (kr.Min.X+kr.Max.X)/2, baseline, k.face, colorKeyLabel, kr.Dx()-2)
	}
}
