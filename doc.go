// Package echo provides a real-time stereo echo (feedback delay) effect in pure Go.
//
// Each channel owns a circular buffer sized for the maximum delay. On every
// sample the delayed value is read, mixed with the dry input, and written
// back together with the input so the echo repeats and decays:
//
//	out[n]  = in[n]*dry + buf[i]*wet
//	buf[i]  = clamp(in[n] + feedback*buf[i], -1, 1)
//
// Feedback is limited to 0.99 and the stored value is clipped, so the loop
// stays bounded for any input.
//
// # Features
//
//   - Independent wet and dry gains (not a crossfade)
//   - Delay from 1 ms up to the configured maximum, default 5 seconds
//   - Scalar and vectorized block paths with matching output, SIMD kernels
//     via github.com/tphakala/simd
//   - Lock-free parameter registers that may be written from any goroutine
//     while audio is processed
//   - Allocation-free processing after [Processor.Prepare]
//   - Smoothed CPU load meter readable from any goroutine
//
// # Quick Start
//
// For offline processing of a whole stereo signal:
//
//	left, right, err := echo.EchoStereo(inL, inR, 48000, echo.DefaultParamValues(), 2.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming use from an audio callback:
//
//	p, err := echo.New(&echo.Config{SampleRate: 48000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// UI or control goroutine
//	p.Params().SetDelaySeconds(0.375)
//	p.Params().SetFeedback(0.6)
//
//	// audio goroutine
//	p.Process(inL, inR, outL, outR)
//
// # Parameters
//
// The host-facing parameter surface is described by [ParamLayout]:
//
//   - [ParamDelay]: delay time in seconds, 0.001 to 5, skewed toward short times
//   - [ParamFeedback]: amount fed back into the buffer, 0 to 0.99
//   - [ParamWet]: gain of the delayed signal, 0 to 1
//   - [ParamDry]: gain of the direct signal, 0 to 1
//   - [ParamBypass]: copy input to output unchanged
//   - [ParamVectorized]: select the vectorized block path
//
// Registers are read once at the start of each block. A change made during a
// block takes effect on the next one.
//
// # Delay Changes
//
// Shortening the delay does not clear the buffer or move the read cursor. A
// cursor left beyond the new loop length consumes that stale position once
// and then wraps, which can produce a single ghost echo of older audio.
// Lengthening the delay exposes whatever the buffer held beyond the previous
// loop. Call [Processor.Reset] to silence the buffer explicitly.
//
// # Thread Safety
//
// [Processor.Process], [Processor.Prepare] and [Processor.Reset] must be
// called from one goroutine at a time. [Params] setters and
// [Processor.CPULoad] are safe from any goroutine.
package echo
