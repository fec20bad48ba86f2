package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

func TestFitScale(t *testing.T) {
	assert.Equal(t, 0.5, FitScale(1600, 200, image.Pt(800, 100)))
	assert.Equal(t, 0.25, FitScale(1600, 400, image.Pt(800, 100)))
	assert.Equal(t, 1.0, FitScale(0, 0, image.Pt(800, 100)))
}

func TestTruncate(t *testing.T) {
	face, err := NewFace(12, false)
	require.NoError(t, err)

	assert.Equal(t, "hi", Truncate("hi", face, 100))
	assert.Equal(t, "a long label", Truncate("a long label", face, 0))

	short := Truncate("a very long label that will not fit", face, 40)
	assert.LessOrEqual(t, font.MeasureString(face, short).Ceil(), 40)
	assert.Contains(t, short, "...")
}

func TestDisplay_OneToOneCopiesPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.Set(3, 4, color.RGBA{R: 200, A: 255})

	dst := image.NewRGBA(image.Rect(0, 0, 4, 8))
	Display(dst, src, 1.0, image.Point{})
	assert.Equal(t, color.RGBA{R: 200, A: 255}, dst.RGBAAt(3, 4))
}

func TestDisplay_Scaled(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Display(dst, src, 0.5, image.Point{})

	assert.Greater(t, dst.RGBAAt(1, 1).R, uint8(250))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(6, 6))
}

func TestDisplay_Scrolled(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.Set(5, 6, color.RGBA{G: 200, A: 255})

	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	Display(dst, src, 1.0, image.Pt(4, 4))
	assert.Equal(t, color.RGBA{G: 200, A: 255}, dst.RGBAAt(1, 2))
}

func TestScaled(t *testing.T) {
	assert.Equal(t, image.Pt(1000, 800), Scaled(2000, 1600, 0.5))
	assert.Equal(t, image.Pt(2000, 1600), Scaled(2000, 1600, 1.0))
}

func TestKey(t *testing.T) {
	face, err := NewFace(11, true)
	require.NoError(t, err)

	img := Key(72, IconMagnifier, "zoom", face, ColorActive, ColorKeyBg)
	assert.Equal(t, image.Rect(0, 0, 72, 72), img.Bounds())

	// Something other than the background was drawn.
	rgba := img.(*image.RGBA)
	drawn := false
	for y := 0; y < 72 && !drawn; y++ {
		for x := 0; x < 72; x++ {
			if rgba.RGBAAt(x, y) != ColorKeyBg {
				drawn = true
				break
			}
		}
	}
	assert.True(t, drawn)
}

func TestOutline(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Outline(dst, image.Rect(2, 2, 8, 8), color.White)

	white := color.RGBA{255, 255, 255, 255}
	assert.Equal(t, white, dst.RGBAAt(2, 2))
	assert.Equal(t, white, dst.RGBAAt(7, 5))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5))
}
