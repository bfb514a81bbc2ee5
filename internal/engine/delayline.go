// Package engine implements the stereo feedback delay line.
//
// A DelayLine owns two fixed-capacity circular buffers and a shared cursor.
// Each stored sample is recirculated with the stabilized recurrence
//
//	buffer[n] = clamp(input[n] + feedback*delayed, -1, 1)
//	output[n] = input[n]*dry + delayed*wet
//
// where delayed is the value found at the cursor before it is overwritten.
// The active loop length is the current delay in samples; buffers are always
// allocated to the maximum delay so that delay changes never reallocate.
//
// Two processing paths share the same state. ProcessBlockScalar is the
// reference. ProcessBlockVectorized partitions the block at the wrap edge and
// runs the same arithmetic through SIMD slice kernels.
package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-echo/internal/simdops"
)

// bufferPair is the left/right circular storage plus the shared cursor.
type bufferPair struct {
	left  []float32
	right []float32
	index int
}

// allocate replaces both buffers with zeroed storage of n samples.
func (p *bufferPair) allocate(n int) {
	p.left = make([]float32, n)
	p.right = make([]float32, n)
	p.index = 0
}

// clear zeroes both buffers and rewinds the cursor.
func (p *bufferPair) clear() {
	clear(p.left)
	clear(p.right)
	p.index = 0
}

func (p *bufferPair) capacity() int {
	return len(p.left)
}

// gains is the per-block parameter snapshot used by both paths.
type gains struct {
	feedback float32
	wet      float32
	dry      float32
}

// DelayLine is a stereo feedback delay with scalar and vectorized processing.
//
// A DelayLine is not safe for concurrent use. Setters and processing calls
// are expected on the audio thread; cross-thread parameter transfer belongs
// to the caller.
type DelayLine struct {
	sampleRate      float64
	maxDelaySeconds float64
	maxDelaySamples int

	// delaySeconds is the last requested delay time, re-applied by Prepare.
	delaySeconds float64
	delaySamples int

	feedback float32
	wetMix   float32
	dryMix   float32

	bufs bufferPair

	width      int
	scratchFB  []float32
	scratchWet []float32
	ops        *simdops.Ops

	prepared bool
}

// Option configures a DelayLine at construction.
type Option func(*DelayLine) error

// WithVectorWidth sets the lane count W of the vectorized path.
// W must be a power of two in [1, MaxVectorWidth].
func WithVectorWidth(width int) Option {
	return func(d *DelayLine) error {
		if width < 1 || width > MaxVectorWidth || width&(width-1) != 0 {
			return fmt.Errorf("%w: %d (must be a power of two in [1, %d])",
				ErrInvalidVectorWidth, width, MaxVectorWidth)
		}
		d.width = width
		return nil
	}
}

// NewDelayLine creates an unprepared delay line with default parameters.
// Prepare must be called before any processing call has an effect.
func NewDelayLine(opts ...Option) (*DelayLine, error) {
	d := &DelayLine{
		sampleRate:      defaultSampleRate,
		maxDelaySeconds: defaultMaxDelaySeconds,
		maxDelaySamples: int(defaultSampleRate * defaultMaxDelaySeconds),
		feedback:        defaultFeedback,
		wetMix:          defaultWetMix,
		dryMix:          defaultDryMix,
		width:           DefaultVectorWidth,
		ops:             simdops.Float32Ops(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.SetDelaySeconds(defaultDelaySeconds)
	return d, nil
}

// Prepare allocates and zeroes both buffers for floor(sampleRate*maxDelaySeconds)
// samples, rewinds the cursor and marks the line ready for processing.
// The current delay time is re-applied against the new sample rate.
//
// Prepare allocates and must not run concurrently with processing.
func (d *DelayLine) Prepare(sampleRate, maxDelaySeconds float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if maxDelaySeconds <= 0 || math.IsNaN(maxDelaySeconds) || math.IsInf(maxDelaySeconds, 0) {
		return fmt.Errorf("%w: %v seconds", ErrInvalidMaxDelay, maxDelaySeconds)
	}

	capacity := math.Floor(sampleRate * maxDelaySeconds)
	if capacity < minDelaySamples {
		return fmt.Errorf("%w: %v seconds at %v Hz is shorter than one sample",
			ErrInvalidMaxDelay, maxDelaySeconds, sampleRate)
	}
	if capacity > maxBufferSamples {
		return fmt.Errorf("%w: %.0f samples per channel (max %d)",
			ErrBufferTooLarge, capacity, maxBufferSamples)
	}

	d.sampleRate = sampleRate
	d.maxDelaySeconds = maxDelaySeconds
	d.maxDelaySamples = int(capacity)
	d.bufs.allocate(d.maxDelaySamples)

	if len(d.scratchFB) != scratchSamples {
		d.scratchFB = make([]float32, scratchSamples)
		d.scratchWet = make([]float32, scratchSamples)
	}

	d.SetDelaySeconds(d.delaySeconds)
	d.prepared = true
	return nil
}

// Reset zeroes both buffers and rewinds the cursor. Parameters are kept.
// It touches the whole buffer and is not meant for the audio thread.
func (d *DelayLine) Reset() {
	d.bufs.clear()
}

// SetDelaySeconds sets the active loop length to round(seconds*sampleRate),
// clamped to [1, MaxDelaySamples]. Samples stored beyond the new loop length
// are left in place.
func (d *DelayLine) SetDelaySeconds(seconds float64) {
	d.delaySeconds = seconds
	if math.IsNaN(seconds) {
		d.delaySamples = minDelaySamples
		return
	}
	d.SetDelaySamples(int(max(min(math.Round(seconds*d.sampleRate), float64(d.maxDelaySamples)), minDelaySamples)))
}

// SetDelaySamples sets the active loop length directly, clamped to
// [1, MaxDelaySamples].
func (d *DelayLine) SetDelaySamples(samples int) {
	d.delaySamples = max(min(samples, d.maxDelaySamples), minDelaySamples)
}

// SetFeedback sets the recirculation gain, clamped to [0, 0.99].
func (d *DelayLine) SetFeedback(feedback float32) {
	d.feedback = clampParam(feedback, 0, maxFeedback)
}

// SetWetMix sets the delayed-signal gain, clamped to [0, 1].
func (d *DelayLine) SetWetMix(wet float32) {
	d.wetMix = clampParam(wet, minMix, maxMix)
}

// SetDryMix sets the direct-signal gain, clamped to [0, 1].
func (d *DelayLine) SetDryMix(dry float32) {
	d.dryMix = clampParam(dry, minMix, maxMix)
}

// ProcessBlockScalar runs the recurrence one sample at a time.
//
// The processed length is the shortest of the four slices. An output slice
// may alias the input slice of the same channel. Before Prepare the call does
// nothing and the outputs are left untouched.
func (d *DelayLine) ProcessBlockScalar(inL, inR, outL, outR []float32) {
	if !d.prepared {
		return
	}

	n := blockLen(inL, inR, outL, outR)
	inL, inR, outL, outR = inL[:n], inR[:n], outL[:n], outR[:n]

	bufL, bufR := d.bufs.left, d.bufs.right
	idx := d.bufs.index
	loopLen := d.delaySamples
	g := d.gains()

	for i := range n {
		delayedL := bufL[idx]
		delayedR := bufR[idx]
		xl, xr := inL[i], inR[i]

		outL[i] = float32(xl*g.dry) + float32(delayedL*g.wet)
		outR[i] = float32(xr*g.dry) + float32(delayedR*g.wet)

		bufL[idx] = clip(xl + float32(g.feedback*delayedL))
		bufR[idx] = clip(xr + float32(g.feedback*delayedR))

		idx++
		if idx >= loopLen {
			idx = 0
		}
	}

	d.bufs.index = idx
}

// ProcessBlockVectorized produces the same output as ProcessBlockScalar.
//
// The block is split into segments that end at the wrap edge. Within a
// segment, whole groups of VectorWidth samples go through the SIMD kernels
// over contiguous buffer memory and the remainder runs the scalar recurrence.
// The cursor is wrapped at most once per segment.
func (d *DelayLine) ProcessBlockVectorized(inL, inR, outL, outR []float32) {
	if !d.prepared {
		return
	}

	n := blockLen(inL, inR, outL, outR)
	g := d.gains()
	c := newChunker(d.bufs.index, d.delaySamples, n, d.width)

	for {
		seg, ok := c.next()
		if !ok {
			break
		}

		if seg.vector > 0 {
			lo, hi := seg.offset, seg.offset+seg.vector
			blo, bhi := seg.start, seg.start+seg.vector
			d.processVector(d.bufs.left[blo:bhi], inL[lo:hi], outL[lo:hi], g)
			d.processVector(d.bufs.right[blo:bhi], inR[lo:hi], outR[lo:hi], g)
		}

		if seg.tail > 0 {
			lo, hi := seg.offset+seg.vector, seg.offset+seg.vector+seg.tail
			blo, bhi := seg.start+seg.vector, seg.start+seg.vector+seg.tail
			processRun(d.bufs.left[blo:bhi], d.bufs.right[blo:bhi],
				inL[lo:hi], inR[lo:hi], outL[lo:hi], outR[lo:hi], g)
		}
	}

	d.bufs.index = c.cursor
}

// processVector applies the recurrence to one channel of a vector run.
// len(buf) is a multiple of the vector width and the run never crosses the
// wrap edge. out may alias in: the input is consumed before out is written.
func (d *DelayLine) processVector(buf, in, out []float32, g gains) {
	ops := d.ops
	for len(buf) > 0 {
		n := min(len(buf), len(d.scratchFB))
		delayed, x, y := buf[:n], in[:n], out[:n]
		next, wet := d.scratchFB[:n], d.scratchWet[:n]

		ops.Scale(next, delayed, g.feedback)
		ops.Add(next, next, x)
		ops.Scale(wet, delayed, g.wet)
		ops.Scale(y, x, g.dry)
		ops.Add(y, y, wet)
		ops.Clamp(delayed, next, -clipLimit, clipLimit)

		buf, in, out = buf[n:], in[n:], out[n:]
	}
}

// processRun applies the scalar recurrence to a contiguous run of buffer
// positions that does not cross the wrap edge. All slices have equal length.
func processRun(bufL, bufR, inL, inR, outL, outR []float32, g gains) {
	n := len(bufL)
	bufR, inL, inR, outL, outR = bufR[:n], inL[:n], inR[:n], outL[:n], outR[:n]
	for i := range n {
		delayedL, delayedR := bufL[i], bufR[i]
		xl, xr := inL[i], inR[i]

		outL[i] = float32(xl*g.dry) + float32(delayedL*g.wet)
		outR[i] = float32(xr*g.dry) + float32(delayedR*g.wet)

		bufL[i] = clip(xl + float32(g.feedback*delayedL))
		bufR[i] = clip(xr + float32(g.feedback*delayedR))
	}
}

func (d *DelayLine) gains() gains {
	return gains{feedback: d.feedback, wet: d.wetMix, dry: d.dryMix}
}

// Prepared reports whether Prepare has succeeded.
func (d *DelayLine) Prepared() bool { return d.prepared }

// SampleRate returns the sample rate in Hz.
func (d *DelayLine) SampleRate() float64 { return d.sampleRate }

// MaxDelaySamples returns the capacity of each channel buffer.
func (d *DelayLine) MaxDelaySamples() int { return d.maxDelaySamples }

// MaxDelaySeconds returns the maximum delay passed to Prepare.
func (d *DelayLine) MaxDelaySeconds() float64 { return d.maxDelaySeconds }

// DelaySamples returns the active loop length.
func (d *DelayLine) DelaySamples() int { return d.delaySamples }

// Feedback returns the recirculation gain.
func (d *DelayLine) Feedback() float32 { return d.feedback }

// WetMix returns the delayed-signal gain.
func (d *DelayLine) WetMix() float32 { return d.wetMix }

// DryMix returns the direct-signal gain.
func (d *DelayLine) DryMix() float32 { return d.dryMix }

// VectorWidth returns the lane count W of the vectorized path.
func (d *DelayLine) VectorWidth() int { return d.width }

// MemoryUsage returns the bytes held by the delay and scratch buffers.
func (d *DelayLine) MemoryUsage() int64 {
	samples := d.bufs.capacity()*stereoChannels + len(d.scratchFB) + len(d.scratchWet)
	return int64(samples) * bytesPerFloat32
}

// blockLen returns the shortest of the four slice lengths.
func blockLen(inL, inR, outL, outR []float32) int {
	return min(len(inL), len(inR), len(outL), len(outR))
}

// clip hard-limits a recirculating value to [-1, 1].
func clip(x float32) float32 {
	if x > clipLimit {
		return clipLimit
	}
	if x < -clipLimit {
		return -clipLimit
	}
	return x
}

// clampParam limits v to [lo, hi]. NaN maps to lo.
func clampParam(v, lo, hi float32) float32 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
