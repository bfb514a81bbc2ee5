// Command echo-info prints processor information, the parameter layout and a
// short performance demonstration.
//
// Usage:
//
//	echo-info -rate 44100 -set delay=0.25 -set feedback=0.6
//	echo-info -params        # List the parameter layout
//	echo-info -demo          # Compare paths, rates and buffer sizes
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	echo "github.com/tphakala/go-audio-echo"
)

var errAssignment = errors.New("expected <param>=<value>")

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer) error {
	var assignments []string

	rate := flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
	maxDelay := flag.Float64("max-delay", echo.DefaultMaxDelaySeconds, "Delay buffer length in seconds")
	width := flag.Int("width", 0, "Vector width (0 for default)")
	block := flag.Int("block", defaultBlockSize, "Frames per block for the throughput test")
	listParams := flag.Bool("params", false, "List the parameter layout")
	demo := flag.Bool("demo", false, "Run a demonstration")
	flag.Func("set", "Set a parameter as <param>=<value> (repeatable)", func(s string) error {
		assignments = append(assignments, s)
		return nil
	})
	flag.Parse()

	switch {
	case *listParams:
		printLayout(w)
		return nil
	case *demo:
		return runDemo(w, *block)
	}

	p, err := echo.New(&echo.Config{SampleRate: *rate, MaxDelaySeconds: *maxDelay, VectorWidth: *width})
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}
	for _, a := range assignments {
		if err := applyAssignment(p.Params(), a); err != nil {
			return err
		}
	}
	// Re-prepare so Info reflects the assigned delay.
	if err := p.Prepare(*rate); err != nil {
		return err
	}

	info := p.Info()
	_, _ = fmt.Fprintf(w, "Processor created:\n")
	_, _ = fmt.Fprintf(w, "  Sample rate: %g Hz\n", info.SampleRate)
	_, _ = fmt.Fprintf(w, "  Delay: %d samples (max %d)\n", info.DelaySamples, info.MaxDelaySamples)
	_, _ = fmt.Fprintf(w, "  Tail: %.3f s\n", info.TailSeconds)
	_, _ = fmt.Fprintf(w, "  Vector width: %d\n", info.VectorWidth)
	_, _ = fmt.Fprintf(w, "  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	_, _ = fmt.Fprintf(w, "  SIMD: %s\n", info.SIMDInfo)

	v := p.Params().Snapshot()
	_, _ = fmt.Fprintf(w, "\nParameters: delay=%.3fs feedback=%.2f wet=%.2f dry=%.2f bypass=%v vectorized=%v\n",
		v.DelaySeconds, v.Feedback, v.WetMix, v.DryMix, v.Bypass, v.Vectorized)

	_, _ = fmt.Fprintln(w, "\nProcessing test signal...")
	load, elapsed := throughput(p, *block)
	_, _ = fmt.Fprintf(w, "  %.0f ms of audio in %v (%.2f%% of real time)\n",
		testSignalSeconds*1000, elapsed.Round(time.Microsecond), load*percentScale)
	return nil
}

// applyAssignment parses "<param>=<value>" and stores the value.
func applyAssignment(params *echo.Params, s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("%w: %q", errAssignment, s)
	}
	id, ok := echo.LookupParam(strings.TrimSpace(key))
	if !ok {
		return fmt.Errorf("%w: %q", echo.ErrUnknownParam, key)
	}

	value = strings.TrimSpace(value)
	var f float64
	if b, err := strconv.ParseBool(value); err == nil {
		if b {
			f = 1
		}
	} else if f, err = strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return params.SetValue(id, f)
}

func printLayout(w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== Parameter Layout ===")
	for _, info := range echo.ParamLayout() {
		r := info.Range
		if info.Toggle {
			_, _ = fmt.Fprintf(w, "\n%-10s toggle, default %v\n", info.Key, info.Default > 0)
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%-10s %g-%g %s, step %g, skew %g, default %g\n",
			info.Key, r.Min, r.Max, info.Label, r.Step, r.Skew, info.Default)
		_, _ = fmt.Fprint(w, "  normalized:")
		for i := range normalizedSteps + 1 {
			n := float64(i) / normalizedSteps
			_, _ = fmt.Fprintf(w, "  %.2f→%g", n, r.ConvertFromNormalized(n))
		}
		_, _ = fmt.Fprintln(w)
	}
}

// throughput processes testSignalSeconds of stereo noise and returns the
// processing time as a fraction of the audio duration.
func throughput(p *echo.Processor, block int) (float64, time.Duration) {
	frames := int(testSignalSeconds * p.SampleRate())
	left, right := testSignal(frames)

	start := time.Now()
	for s := 0; s < frames; s += block {
		e := min(s+block, frames)
		p.Process(left[s:e], right[s:e], left[s:e], right[s:e])
	}
	elapsed := time.Since(start)
	return elapsed.Seconds() / testSignalSeconds, elapsed
}

func testSignal(frames int) (left, right []float32) {
	rng := rand.New(rand.NewPCG(testSignalSeed, testSignalSeed))
	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := range left {
		left[i] = float32((rng.Float64()*2 - 1) * testSignalLevel)
		right[i] = float32((rng.Float64()*2 - 1) * testSignalLevel)
	}
	return left, right
}

func runDemo(w io.Writer, block int) error {
	_, _ = fmt.Fprintln(w, "=== Go Audio Echo Demo ===")

	_, _ = fmt.Fprintln(w, "1. Scalar vs Vectorized")
	_, _ = fmt.Fprintln(w, "-----------------------")
	rates := []struct {
		rate float64
		name string
	}{
		{sampleRateCD, "CD"},
		{sampleRateDAT, "DAT"},
		{sampleRateHiRes, "Hi-res 96k"},
		{sampleRate4xDAT, "Hi-res 192k"},
	}
	for _, r := range rates {
		_, _ = fmt.Fprintf(w, "\n%s (%.0f Hz):\n", r.name, r.rate)
		for _, vectorized := range []bool{false, true} {
			values := echo.DefaultParamValues()
			values.Vectorized = vectorized
			p, err := echo.New(&echo.Config{SampleRate: r.rate, Params: &values})
			if err != nil {
				return err
			}
			load, elapsed := throughput(p, block)
			_, _ = fmt.Fprintf(w, "  %-10s %10v  %.3f%% of real time\n",
				pathName(vectorized), elapsed.Round(time.Microsecond), load*percentScale)
		}
	}

	_, _ = fmt.Fprintln(w, "\n2. Buffer Sizes")
	_, _ = fmt.Fprintln(w, "---------------")
	for _, maxDelay := range demoMaxDelays {
		p, err := echo.New(&echo.Config{SampleRate: sampleRateDAT, MaxDelaySeconds: maxDelay})
		if err != nil {
			return err
		}
		info := p.Info()
		_, _ = fmt.Fprintf(w, "  %.1f s: %d samples, %.1f KB\n",
			maxDelay, info.MaxDelaySamples, float64(info.MemoryUsage)/bytesPerKilobyte)
	}

	_, _ = fmt.Fprintln(w, "\n=== Demo Complete ===")
	return nil
}

func pathName(vectorized bool) string {
	if vectorized {
		return "vectorized"
	}
	return "scalar"
}
