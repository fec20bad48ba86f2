package zoom

import (
	"testing"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowHide_RestoresScale(t *testing.T) {
	fb := remote.NewFramebuffer(10, 10)
	fb.SetScale(1.5)

	z, err := New(fb)
	require.NoError(t, err)

	require.NoError(t, z.Show())
	assert.Equal(t, 1.0, fb.Scale())

	require.NoError(t, z.Hide())
	assert.Equal(t, 1.5, fb.Scale())
}

func TestShowTwice_KeepsSingleSlot(t *testing.T) {
	fb := remote.NewFramebuffer(10, 10)
	fb.SetScale(0.5)

	z, err := New(fb)
	require.NoError(t, err)

	require.NoError(t, z.Show())
	require.NoError(t, z.Show())
	require.NoError(t, z.Hide())

	// The second Show saved 1.0 over the original scale.
	assert.Equal(t, 1.0, fb.Scale())
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, component.ErrMissingSession)
}
