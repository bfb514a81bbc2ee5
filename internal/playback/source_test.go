package playback

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickSource_Pattern(t *testing.T) {
	// 80-frame period, 40-frame blip, 200 frames total.
	c := NewClickSource(8000, 0.01, 0.025)

	left := make([]float32, 256)
	right := make([]float32, 256)
	n, err := c.ReadStereo(left, right)
	require.NoError(t, err)
	require.Equal(t, 200, n)

	assert.Equal(t, left, right)
	assert.Zero(t, left[0])
	assert.NotZero(t, left[1])
	for i := 40; i < 80; i++ {
		assert.Zero(t, left[i], "frame %d between blips", i)
	}
	assert.InDelta(t, left[1], left[81], 0)
	assert.InDelta(t, left[5], left[165], 0)

	n, err = c.ReadStereo(left, right)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestClickSource_Endless(t *testing.T) {
	c := NewClickSource(8000, 0.5, 0)

	buf := make([]float32, 1000)
	for range 100 {
		n, err := c.ReadStereo(buf, buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
	}
}

func TestClickSource_ShortReads(t *testing.T) {
	c := NewClickSource(8000, 0.01, 0.001) // 8 frames
	left := make([]float32, 5)
	right := make([]float32, 3)

	n, err := c.ReadStereo(left, right)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.ReadStereo(left, right)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.ReadStereo(left, right)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
