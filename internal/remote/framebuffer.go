package remote

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// keyHistory bounds how many sent key events Framebuffer remembers.
const keyHistory = 64

// Framebuffer is a Session backed by an in-memory image. It stands in for a
// live connection: the display contents come from an image file (reloaded
// when the file changes) or a generated gradient.
type Framebuffer struct {
	mu    sync.RWMutex
	img   *image.RGBA
	scale float64
	keys  []KeyEvent
}

// NewFramebuffer creates a width x height display filled with a gradient.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		img:   gradient(image.Rect(0, 0, width, height), colornames.Blueviolet, colornames.Orangered),
		scale: 1.0,
	}
}

// Width implements Session.
func (f *Framebuffer) Width() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.img.Bounds().Dx()
}

// Height implements Session.
func (f *Framebuffer) Height() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.img.Bounds().Dy()
}

// Scale implements Session.
func (f *Framebuffer) Scale() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scale
}

// SetScale implements Session.
func (f *Framebuffer) SetScale(factor float64) {
	f.mu.Lock()
	f.scale = factor
	f.mu.Unlock()
}

// Flatten returns a copy of the current display, so later updates do not
// leak into the snapshot.
func (f *Framebuffer) Flatten() image.Image {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap := image.NewRGBA(f.img.Bounds())
	draw.Draw(snap, snap.Bounds(), f.img, f.img.Bounds().Min, draw.Src)
	return snap
}

// SendKeyEvent records the event.
func (f *Framebuffer) SendKeyEvent(pressed bool, keysym uint32) error {
	f.mu.Lock()
	f.keys = append(f.keys, KeyEvent{Pressed: pressed, Keysym: keysym})
	if len(f.keys) > keyHistory {
		f.keys = f.keys[len(f.keys)-keyHistory:]
	}
	f.mu.Unlock()

	slog.Debug("key event", "pressed", pressed, "keysym", fmt.Sprintf("0x%04x", keysym))
	return nil
}

// Keys returns the most recent key events, oldest first.
func (f *Framebuffer) Keys() []KeyEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]KeyEvent(nil), f.keys...)
}

// SetImage replaces the display contents. The display takes the image's
// size.
func (f *Framebuffer) SetImage(src image.Image) {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)

	f.mu.Lock()
	f.img = img
	f.mu.Unlock()
}

// Load replaces the display contents with the image at path. PNG, JPEG and
// WebP are supported.
func (f *Framebuffer) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open display image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("failed to decode display image %s: %w", path, err)
	}
	f.SetImage(img)
	return nil
}

// Watch reloads the image at path whenever it is written or replaced, until
// ctx is cancelled. The parent directory is watched so editors that replace
// the file atomically are picked up too.
func (f *Framebuffer) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := f.Load(path); err != nil {
				slog.Warn("display reload failed", "path", path, "err", err)
				continue
			}
			slog.Info("display reloaded", "path", path, "width", f.Width(), "height", f.Height())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("display watcher error", "err", err)
		}
	}
}

// gradient fills rect with a horizontal gradient from start to end.
func gradient(rect image.Rectangle, start, end color.RGBA) *image.RGBA {
	img := image.NewRGBA(rect)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			t := float64(x-rect.Min.X) / float64(rect.Dx())

			r := float64(start.R)*(1-t) + float64(end.R)*t
			g := float64(start.G)*(1-t) + float64(end.G)*t
			b := float64(start.B)*(1-t) + float64(end.B)*t

			img.Set(x, y, color.RGBA{
				R: uint8(r),
				G: uint8(g),
				B: uint8(b),
				A: 255,
			})
		}
	}

	return img
}
