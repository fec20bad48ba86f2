// Package render holds the drawing helpers shared by components and the
// deck driver: SVG icons, text, and scaling the remote display into the
// viewport.
package render

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

//go:embed icons/arrow-up.svg
var IconArrowUp string

//go:embed icons/arrow-down.svg
var IconArrowDown string

//go:embed icons/arrow-left.svg
var IconArrowLeft string

//go:embed icons/arrow-right.svg
var IconArrowRight string

//go:embed icons/pointer.svg
var IconPointer string

//go:embed icons/keyboard.svg
var IconKeyboard string

//go:embed icons/magnifier.svg
var IconMagnifier string

//go:embed icons/pan.svg
var IconPan string

//go:embed icons/type.svg
var IconType string

// Common colors
var (
	ColorBackground = color.RGBA{25, 25, 25, 255}
	ColorKeyBg      = color.RGBA{40, 40, 40, 255}
	ColorActive     = color.RGBA{0, 191, 255, 255}
	ColorIdle       = color.RGBA{180, 180, 180, 255}
	ColorScrim      = color.RGBA{0, 0, 0, 140}
	ColorBorder     = color.RGBA{255, 165, 0, 255}
)

// NewFace creates a Go font face at size points. Bold selects Go Bold.
func NewFace(size float64, bold bool) (font.Face, error) {
	data := goregular.TTF
	if bold {
		data = gobold.TTF
	}

	tt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return face, nil
}

// SVGIcon rasterizes svgContent into r on dst. The icon takes 60% of the
// smaller side of r and is centered; currentColor is replaced by iconColor.
func SVGIcon(dst draw.Image, r image.Rectangle, svgContent string, iconColor color.Color) {
	cr, cg, cb, _ := iconColor.RGBA()
	hexColor := fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8)
	svgContent = strings.ReplaceAll(svgContent, "currentColor", hexColor)

	icon, err := oksvg.ReadIconStream(strings.NewReader(svgContent))
	if err != nil {
		slog.Warn("failed to parse SVG", "err", err)
		return
	}

	side := min(r.Dx(), r.Dy())
	iconSize := float64(side) * 0.6
	x := float64(r.Min.X) + (float64(r.Dx())-iconSize)/2
	y := float64(r.Min.Y) + (float64(r.Dy())-iconSize)/2
	icon.SetTarget(x, y, iconSize, iconSize)

	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	raster := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	icon.Draw(raster, 1.0)
}

// Key renders a square key image with an icon and, when face is non-nil, a
// label along the bottom.
func Key(size int, svgContent, label string, face font.Face, fg, bg color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	iconRect := img.Bounds()
	if face != nil && label != "" {
		iconRect.Max.Y -= size / 4
		TextCentered(img, label, size/2, size-size/10, face, fg, size-4)
	}
	SVGIcon(img, iconRect, svgContent, fg)
	return img
}

// Text draws text with its baseline at (x, y), truncated to maxWidth.
func Text(dst draw.Image, text string, x, y int, face font.Face, col color.Color, maxWidth int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(Truncate(text, face, maxWidth))
}

// TextCentered draws text horizontally centered on cx with its baseline at y.
func TextCentered(dst draw.Image, text string, cx, y int, face font.Face, col color.Color, maxWidth int) {
	text = Truncate(text, face, maxWidth)
	width := font.MeasureString(face, text).Ceil()
	Text(dst, text, cx-width/2, y, face, col, 0)
}

// Truncate shortens text to fit within maxWidth, adding an ellipsis. A
// non-positive maxWidth disables truncation.
func Truncate(text string, face font.Face, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	ellipsis := "..."

	if font.MeasureString(face, text).Ceil() <= maxWidth {
		return text
	}

	runes := []rune(text)
	for i := len(runes); i > 0; i-- {
		truncated := string(runes[:i]) + ellipsis
		if font.MeasureString(face, truncated).Ceil() <= maxWidth {
			return truncated
		}
	}

	return ellipsis
}

// FitScale returns the factor that fits a w x h display inside viewport.
func FitScale(w, h int, viewport image.Point) float64 {
	if w <= 0 || h <= 0 {
		return 1.0
	}
	sx := float64(viewport.X) / float64(w)
	sy := float64(viewport.Y) / float64(h)
	return min(sx, sy)
}

// Display draws src onto dst at the given scale with the scaled point
// scroll at dst's top-left. A scale of exactly 1 copies pixels without
// resampling.
func Display(dst draw.Image, src image.Image, scale float64, scroll image.Point) {
	sb := src.Bounds()
	if scale == 1.0 {
		draw.Draw(dst, dst.Bounds(), src, sb.Min.Add(scroll), draw.Src)
		return
	}

	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	target := image.Rect(0, 0, w, h).Add(dst.Bounds().Min).Sub(scroll)
	draw.CatmullRom.Scale(dst, target, src, sb, draw.Src, nil)
}

// Scaled returns the size of a w x h display drawn at scale.
func Scaled(w, h int, scale float64) image.Point {
	return image.Pt(int(float64(w)*scale), int(float64(h)*scale))
}

// Fill paints r on dst with c, blending over what is already there.
func Fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Over)
}

// Outline draws a one pixel border just inside r.
func Outline(dst draw.Image, r image.Rectangle, c color.Color) {
	u := &image.Uniform{c}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
