package deck

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwipeEvents(t *testing.T) {
	events := SwipeEvents(image.Pt(10, 20), image.Pt(300, 40))
	require.Len(t, events, 3)
	assert.Equal(t, component.Event{Kind: component.PointerDown, Point: image.Pt(10, 20)}, events[0])
	assert.Equal(t, component.Event{Kind: component.PointerMove, Point: image.Pt(300, 40)}, events[1])
	assert.Equal(t, component.Event{Kind: component.PointerUp, Point: image.Pt(300, 40)}, events[2])
}

func TestDefaultBindingsCoverEveryState(t *testing.T) {
	bindings := DefaultBindings()
	var states []component.State
	for _, b := range bindings {
		assert.NotEmpty(t, b.Label)
		assert.NotEmpty(t, b.Icon)
		states = append(states, b.State)
	}
	assert.ElementsMatch(t, component.AllStates, states)
}

func TestKeyImagesHighlightActiveState(t *testing.T) {
	face, err := newKeyFace()
	require.NoError(t, err)

	images := KeyImages(DefaultBindings(), component.Magnifier, 72, face)
	require.Len(t, images, 5)
	for _, img := range images {
		assert.Equal(t, image.Rect(0, 0, 72, 72), img.Bounds())
	}

	corner := func(img image.Image) color.RGBA {
		return color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	}
	assert.Equal(t, render.ColorActive, corner(images[2]))
	assert.Equal(t, render.ColorKeyBg, corner(images[0]))
}

func TestStripImage(t *testing.T) {
	strip := image.Rect(0, 0, 800, 100)

	same := image.NewRGBA(strip)
	assert.Same(t, same, StripImage(same, strip).(*image.RGBA))

	large := image.NewRGBA(image.Rect(0, 0, 1600, 200))
	scaled := StripImage(large, strip)
	assert.Equal(t, strip, scaled.Bounds())
}

func TestFirstErrorKeepsFirst(t *testing.T) {
	var errs firstError
	errs.record(nil)
	assert.NoError(t, errs.err)

	first := errors.New("key handler")
	errs.record(first)
	errs.record(errors.New("swipe handler"))
	errs.record(nil)
	assert.Same(t, first, errs.err)
}
