// Package playback streams stereo audio through an echo Processor into a
// pull-based audio device. A producer fills a lock-free ring from a Source
// while the device goroutine drains it via Streamer.
package playback

import (
	"io"
	"math"
)

// Source produces planar stereo frames.
type Source interface {
	// ReadStereo fills up to min(len(left), len(right)) frames and returns
	// the count. It returns io.EOF once exhausted.
	ReadStereo(left, right []float32) (int, error)
}

// ClickSource emits short decaying tone blips at a fixed interval, which
// makes individual echoes easy to hear.
type ClickSource struct {
	period    int
	blipLen   int
	omega     float64
	amplitude float32
	pos       int
	remaining int64 // negative for endless
}

// NewClickSource returns a click train at sampleRate. A non-positive
// durationSeconds makes it endless.
func NewClickSource(sampleRate, intervalSeconds, durationSeconds float64) *ClickSource {
	remaining := int64(-1)
	if durationSeconds > 0 {
		remaining = int64(math.Round(durationSeconds * sampleRate))
	}
	return &ClickSource{
		period:    max(int(math.Round(intervalSeconds*sampleRate)), 1),
		blipLen:   max(int(blipSeconds*sampleRate), 1),
		omega:     2 * math.Pi * blipFrequency / sampleRate,
		amplitude: blipAmplitude,
		remaining: remaining,
	}
}

// ReadStereo implements Source.
func (c *ClickSource) ReadStereo(left, right []float32) (int, error) {
	n := min(len(left), len(right))
	if c.remaining >= 0 {
		if c.remaining == 0 {
			return 0, io.EOF
		}
		n = int(min(int64(n), c.remaining))
		c.remaining -= int64(n)
	}

	for i := range n {
		var v float32
		if c.pos < c.blipLen {
			env := 1 - float64(c.pos)/float64(c.blipLen)
			v = c.amplitude * float32(env*math.Sin(c.omega*float64(c.pos)))
		}
		left[i], right[i] = v, v

		c.pos++
		if c.pos >= c.period {
			c.pos = 0
		}
	}
	return n, nil
}
