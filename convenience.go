package echo

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-echo/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// EchoStereo applies the echo to a whole stereo signal and returns new
// slices. tailSeconds of silence are appended to the input so the echoes can
// ring out; the output is len(left) + round(tailSeconds*sampleRate) long.
//
// The signal is processed in DefaultBlockSize blocks, as a host would.
func EchoStereo(left, right []float32, sampleRate float64, values ParamValues, tailSeconds float64) (outL, outR []float32, err error) {
	if len(left) != len(right) {
		return nil, nil, fmt.Errorf("%w: channel lengths %d and %d", ErrUnsupportedLayout, len(left), len(right))
	}
	if math.IsNaN(tailSeconds) || math.IsInf(tailSeconds, 0) || tailSeconds < 0 {
		return nil, nil, fmt.Errorf("%w: tail must be non-negative", ErrInvalidConfig)
	}

	p, err := New(&Config{SampleRate: sampleRate, Params: &values})
	if err != nil {
		return nil, nil, err
	}

	total := len(left) + int(math.Round(tailSeconds*sampleRate))
	outL = make([]float32, total)
	outR = make([]float32, total)
	copy(outL, left)
	copy(outR, right)

	for start := 0; start < total; start += DefaultBlockSize {
		end := min(start+DefaultBlockSize, total)
		p.Process(outL[start:end], outR[start:end], outL[start:end], outR[start:end])
	}

	return outL, outR, nil
}

// InterleaveStereo merges two equal-length channels into L/R frames.
func InterleaveStereo(left, right []float32) ([]float32, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: channel lengths %d and %d", ErrUnsupportedLayout, len(left), len(right))
	}
	out := make([]float32, len(left)*stereoChannels)
	if err := interleaveInto(out, left, right); err != nil {
		return nil, err
	}
	return out, nil
}

// DeinterleaveStereo splits L/R frames into two channels. The input length
// must be even.
func DeinterleaveStereo(interleaved []float32) (left, right []float32, err error) {
	if len(interleaved)%stereoChannels != 0 {
		return nil, nil, fmt.Errorf("%w: odd sample count %d", ErrUnsupportedLayout, len(interleaved))
	}
	frames := len(interleaved) / stereoChannels
	left = make([]float32, frames)
	right = make([]float32, frames)
	simdops.Float32Ops().Deinterleave2(left, right, interleaved)
	return left, right, nil
}

func interleaveInto(dst, left, right []float32) error {
	if len(left) != len(right) || len(dst) != len(left)*stereoChannels {
		return fmt.Errorf("%w: %d frames into %d samples", ErrUnsupportedLayout, len(left), len(dst))
	}
	simdops.Float32Ops().Interleave2(dst, left, right)
	return nil
}
