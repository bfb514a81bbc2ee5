// Command echo-analyze measures the impulse response of the echo.
//
// Usage:
//
//	echo-analyze -delay 0.25 -feedback 0.6          # Render and measure
//	echo-analyze -rate 44100 -length 4 -scalar      # Scalar path at CD rate
//	echo-analyze recorded_ir.wav                    # Measure a recorded response
//
// The response is rendered by feeding a unit impulse through the processor.
// The report lists the first echoes, the fitted feedback and decay time, and
// the delay estimated independently from the comb spacing of the spectrum.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	echo "github.com/tphakala/go-audio-echo"
	"github.com/tphakala/go-audio-echo/internal/analysis"
	"github.com/tphakala/go-audio-echo/internal/wavio"
)

const (
	defaultLengthSeconds = 4.0
	maxEchoesToShow      = 8
	readChunkFrames      = 65536
	dbScale              = 20.0
)

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer) error {
	defaults := echo.DefaultParamValues()

	delay := flag.Float64("delay", defaults.DelaySeconds, "Delay time in seconds (0.001-5)")
	feedback := flag.Float64("feedback", float64(defaults.Feedback), "Feedback amount (0-0.99)")
	wet := flag.Float64("wet", float64(defaults.WetMix), "Wet (echo) gain (0-1)")
	dry := flag.Float64("dry", float64(defaults.DryMix), "Dry (direct) gain (0-1)")
	rate := flag.Float64("rate", echo.RateDAT, "Sample rate in Hz")
	length := flag.Float64("length", defaultLengthSeconds, "Impulse response length in seconds")
	threshold := flag.Float64("threshold", analysis.DefaultThreshold, "Smallest echo magnitude to report")
	scalar := flag.Bool("scalar", false, "Use the scalar reference path")
	flag.Parse()

	var (
		ir         []float32
		sampleRate float64
		err        error
	)
	if flag.NArg() > 0 {
		ir, sampleRate, err = loadImpulseResponse(flag.Arg(0))
	} else {
		values := echo.ParamValues{
			DelaySeconds: *delay,
			Feedback:     float32(*feedback),
			WetMix:       float32(*wet),
			DryMix:       float32(*dry),
			Vectorized:   !*scalar,
		}
		sampleRate = *rate
		ir, err = renderImpulseResponse(values, sampleRate, *length)
	}
	if err != nil {
		return err
	}

	m, err := measure(ir, sampleRate, *threshold)
	if err != nil {
		return err
	}
	printReport(w, m)
	return nil
}

// renderImpulseResponse runs a unit impulse through a processor and returns
// lengthSeconds of the left channel.
func renderImpulseResponse(values echo.ParamValues, sampleRate, lengthSeconds float64) ([]float32, error) {
	n := int(math.Round(lengthSeconds * sampleRate))
	if n < 2 {
		return nil, fmt.Errorf("impulse response length %g s is too short", lengthSeconds)
	}

	impulse := make([]float32, n)
	impulse[0] = 1
	left, _, err := echo.EchoStereo(impulse, make([]float32, n), sampleRate, values, 0)
	return left, err
}

// loadImpulseResponse reads the left channel of a WAV file.
func loadImpulseResponse(path string) ([]float32, float64, error) {
	r, err := wavio.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = r.Close() }()

	ir := make([]float32, 0, r.TotalFrames)
	left := make([]float32, readChunkFrames)
	right := make([]float32, readChunkFrames)
	for {
		n, err := r.ReadStereo(left, right)
		ir = append(ir, left[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return ir, float64(r.SampleRate), nil
}

type measurement struct {
	report analysis.Report

	// spectrumDelay is the delay in samples estimated from the comb spacing,
	// or NaN when the spectrum shows no comb.
	spectrumDelay float64
}

func measure(ir []float32, sampleRate, threshold float64) (measurement, error) {
	report, err := analysis.ImpulseResponse(ir, sampleRate, threshold)
	if err != nil {
		return measurement{}, err
	}

	m := measurement{report: report, spectrumDelay: math.NaN()}
	mag := analysis.MagnitudeSpectrum(ir)
	if d, err := analysis.SpectrumDelay(mag, len(ir)); err == nil {
		m.spectrumDelay = d
	}
	return m, nil
}

func printReport(w io.Writer, m measurement) {
	r := m.report

	_, _ = fmt.Fprintln(w, "=== Echo Impulse Response ===")
	_, _ = fmt.Fprintf(w, "  Sample rate: %.0f Hz\n", r.SampleRate)
	_, _ = fmt.Fprintf(w, "  Dry gain: %.4f\n", r.DryGain)
	_, _ = fmt.Fprintf(w, "  Delay: %d samples (%.4f s)\n", r.DelaySamples, r.DelaySeconds)
	_, _ = fmt.Fprintf(w, "  Wet gain: %.4f\n", r.WetGain)
	_, _ = fmt.Fprintf(w, "  Feedback: %.4f (R² %.4f)\n", r.Feedback, r.FitR2)
	_, _ = fmt.Fprintf(w, "  Decay to -60 dB: %.3f s\n", r.DecaySeconds)

	if math.IsNaN(m.spectrumDelay) {
		_, _ = fmt.Fprintln(w, "  Spectrum delay: no comb found")
	} else {
		_, _ = fmt.Fprintf(w, "  Spectrum delay: %.1f samples\n", m.spectrumDelay)
	}

	_, _ = fmt.Fprintf(w, "\nEchoes (%d found):\n", len(r.Echoes))
	for i, e := range r.Echoes {
		if i == maxEchoesToShow {
			_, _ = fmt.Fprintf(w, "  ... (%d more echoes)\n", len(r.Echoes)-maxEchoesToShow)
			break
		}
		_, _ = fmt.Fprintf(w, "  %2d: %8d  %+.6f  %6.1f dB\n",
			i+1, e.Index, e.Gain, dbScale*math.Log10(math.Abs(e.Gain)))
	}
}
