package echo

import (
	"fmt"
	"time"

	"github.com/tphakala/go-audio-echo/internal/engine"
	"github.com/tphakala/simd/cpu"
)

// Processor is a stereo echo effect bound to a parameter register set.
//
// Process, Prepare and Reset must be called from a single goroutine at a
// time. The registers returned by Params and the CPULoad reading may be used
// from any goroutine.
type Processor struct {
	line            *engine.DelayLine
	params          *Params
	meter           *LoadMeter
	maxDelaySeconds float64
}

// Info describes the prepared state of a Processor.
type Info struct {
	SampleRate      float64
	MaxDelaySamples int
	DelaySamples    int // as of the last Prepare or processed block
	VectorWidth     int
	MemoryUsage     int64  // bytes held by delay and scratch buffers
	SIMDInfo        string // CPU features reported by the SIMD kernels
	TailSeconds     float64
}

// Params returns the live parameter registers.
func (p *Processor) Params() *Params {
	return p.params
}

// Prepare reallocates the delay buffers for sampleRate and zeroes them.
// It allocates and must not run concurrently with Process.
func (p *Processor) Prepare(sampleRate float64) error {
	if err := p.line.Prepare(sampleRate, p.maxDelaySeconds); err != nil {
		return fmt.Errorf("prepare at %v Hz: %w", sampleRate, err)
	}
	p.apply(p.params.Snapshot())
	p.meter.Reset(sampleRate)
	return nil
}

// Reset silences the delay buffers without changing parameters.
func (p *Processor) Reset() {
	p.line.Reset()
}

// Process runs one block. Parameters are read once at the start of the block.
// The block length is the shortest of the four slices. Output may alias
// input. Process does not allocate.
func (p *Processor) Process(inL, inR, outL, outR []float32) {
	start := time.Now()
	v := p.params.Snapshot()

	n := min(len(inL), len(inR), len(outL), len(outR))
	if v.Bypass {
		copy(outL[:n], inL[:n])
		copy(outR[:n], inR[:n])
		return
	}

	p.apply(v)
	if v.Vectorized {
		p.line.ProcessBlockVectorized(inL[:n], inR[:n], outL[:n], outR[:n])
	} else {
		p.line.ProcessBlockScalar(inL[:n], inR[:n], outL[:n], outR[:n])
	}

	p.meter.Update(time.Since(start), n)
}

// apply pushes a register snapshot into the delay line.
func (p *Processor) apply(v ParamValues) {
	p.line.SetDelaySeconds(v.DelaySeconds)
	p.line.SetFeedback(v.Feedback)
	p.line.SetWetMix(v.WetMix)
	p.line.SetDryMix(v.DryMix)
}

// ProcessInterleaved runs one block of interleaved stereo frames. out may be
// the same slice as in. Lengths must be equal and even.
//
// The deinterleave buffers are allocated per call, so this is meant for
// offline use. Real-time callers keep their own planar buffers and use Process.
func (p *Processor) ProcessInterleaved(in, out []float32) error {
	if len(in) != len(out) || len(in)%stereoChannels != 0 {
		return fmt.Errorf("%w: %d input and %d output samples", ErrUnsupportedLayout, len(in), len(out))
	}
	left, right, err := DeinterleaveStereo(in)
	if err != nil {
		return err
	}
	p.Process(left, right, left, right)
	return interleaveInto(out, left, right)
}

// CPULoad returns the smoothed fraction of real time spent in Process, in [0, 1].
func (p *Processor) CPULoad() float32 {
	return p.meter.Load()
}

// TailSeconds returns how long output may continue after input stops.
func (p *Processor) TailSeconds() float64 {
	return p.line.MaxDelaySeconds()
}

// SampleRate returns the rate passed to the last Prepare.
func (p *Processor) SampleRate() float64 {
	return p.line.SampleRate()
}

// Info returns a description of the prepared engine.
func (p *Processor) Info() Info {
	return Info{
		SampleRate:      p.line.SampleRate(),
		MaxDelaySamples: p.line.MaxDelaySamples(),
		DelaySamples:    p.line.DelaySamples(),
		VectorWidth:     p.line.VectorWidth(),
		MemoryUsage:     p.line.MemoryUsage(),
		SIMDInfo:        cpu.Info(),
		TailSeconds:     p.TailSeconds(),
	}
}
