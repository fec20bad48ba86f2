package remote

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
	require.NoError(t, os.Rename(tmp, path))
}

func TestFramebuffer_Basics(t *testing.T) {
	fb := NewFramebuffer(320, 200)
	assert.Equal(t, 320, fb.Width())
	assert.Equal(t, 200, fb.Height())
	assert.Equal(t, 1.0, fb.Scale())

	fb.SetScale(1.5)
	assert.Equal(t, 1.5, fb.Scale())
}

func TestFramebuffer_FlattenIsSnapshot(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	snap := fb.Flatten()
	before := snap.At(5, 5)

	black := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(black, black.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	fb.SetImage(black)
	assert.Equal(t, before, snap.At(5, 5))
	assert.Equal(t, color.RGBA{A: 255}, fb.Flatten().At(5, 5))
}

func TestFramebuffer_SendKeyEvent(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	require.NoError(t, fb.SendKeyEvent(true, 0x61))
	require.NoError(t, fb.SendKeyEvent(false, 0x61))

	assert.Equal(t, []KeyEvent{{Pressed: true, Keysym: 0x61}, {Pressed: false, Keysym: 0x61}}, fb.Keys())

	for range keyHistory * 2 {
		require.NoError(t, fb.SendKeyEvent(true, 0x62))
	}
	assert.Len(t, fb.Keys(), keyHistory)
}

func TestFramebuffer_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.png")
	writePNG(t, path, 64, 48, color.White)

	fb := NewFramebuffer(1, 1)
	require.NoError(t, fb.Load(path))
	assert.Equal(t, 64, fb.Width())
	assert.Equal(t, 48, fb.Height())

	assert.Error(t, fb.Load(filepath.Join(t.TempDir(), "missing.png")))
}

func TestFramebuffer_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.png")
	writePNG(t, path, 16, 16, color.White)

	fb := NewFramebuffer(1, 1)
	require.NoError(t, fb.Load(path))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fb.Watch(ctx, path) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to register before replacing the file.
	time.Sleep(50 * time.Millisecond)
	writePNG(t, path, 32, 24, color.Black)

	require.Eventually(t, func() bool { return fb.Width() == 32 && fb.Height() == 24 }, 2*time.Second, 10*time.Millisecond)
}
