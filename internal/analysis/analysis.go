// Package analysis measures echo impulse responses: where the echoes land,
// how fast they decay and the comb structure they leave in the spectrum.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// decayDecades is the number of decades (60 dB) used for the decay time.
const decayDecades = 3

// DefaultThreshold is the smallest echo magnitude treated as signal.
const DefaultThreshold = 1e-4

var (
	// ErrTooShort indicates an impulse response with fewer than two samples.
	ErrTooShort = errors.New("impulse response too short")

	// ErrNoEcho indicates that no sample after the first exceeds the threshold.
	ErrNoEcho = errors.New("no echo found")

	// ErrNoComb indicates a spectrum without at least two comb peaks.
	ErrNoComb = errors.New("no comb structure found")
)

// Echo is one repeat found in an impulse response.
type Echo struct {
	Index int     // sample position
	Gain  float64 // signed amplitude
}

// Report summarises an impulse response.
type Report struct {
	SampleRate   float64
	DryGain      float64
	DelaySamples int
	DelaySeconds float64
	WetGain      float64 // gain of the first echo
	Feedback     float64 // ratio between successive echoes
	FitR2        float64 // goodness of the exponential decay fit
	DecaySeconds float64 // time from the first echo until -60 dB
	Echoes       []Echo
}

// ImpulseResponse analyses the response of an echo to a unit impulse at
// index 0. The first echo is the loudest sample after index 0; further echoes
// are read at its multiples while they stay above threshold.
func ImpulseResponse(ir []float32, sampleRate, threshold float64) (Report, error) {
	if len(ir) < 2 {
		return Report{}, fmt.Errorf("%w: %d samples", ErrTooShort, len(ir))
	}

	mag := make([]float64, len(ir)-1)
	for i, v := range ir[1:] {
		mag[i] = math.Abs(float64(v))
	}
	first := floats.MaxIdx(mag)
	if mag[first] < threshold {
		return Report{}, fmt.Errorf("%w: peak %g below %g", ErrNoEcho, mag[first], threshold)
	}
	delay := first + 1

	var echoes []Echo
	for idx := delay; idx < len(ir); idx += delay {
		g := float64(ir[idx])
		if math.Abs(g) < threshold {
			break
		}
		echoes = append(echoes, Echo{Index: idx, Gain: g})
	}

	r := Report{
		SampleRate:   sampleRate,
		DryGain:      float64(ir[0]),
		DelaySamples: delay,
		DelaySeconds: float64(delay) / sampleRate,
		WetGain:      echoes[0].Gain,
		Echoes:       echoes,
	}

	r.Feedback, r.FitR2 = FitDecay(echoes)
	r.DecaySeconds = r.DelaySeconds
	if r.Feedback > 0 && r.Feedback < 1 {
		repeats := decayDecades / -math.Log10(r.Feedback)
		r.DecaySeconds = repeats * r.DelaySeconds
	}

	return r, nil
}

// FitDecay fits |gain_k| = a * f^k by least squares on the log magnitudes and
// returns f and the coefficient of determination. Fewer than two echoes give
// zero feedback.
func FitDecay(echoes []Echo) (feedback, r2 float64) {
	if len(echoes) < 2 {
		return 0, 0
	}

	xs := make([]float64, len(echoes))
	ys := make([]float64, len(echoes))
	for k, e := range echoes {
		xs[k] = float64(k)
		ys[k] = math.Log(math.Abs(e.Gain))
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return math.Exp(beta), stat.RSquared(xs, ys, nil, alpha, beta)
}

// MagnitudeSpectrum returns |X[k]| for k in [0, len(x)/2].
func MagnitudeSpectrum(x []float32) []float64 {
	if len(x) == 0 {
		return nil
	}

	seq := make([]float64, len(x))
	for i, v := range x {
		seq[i] = float64(v)
	}

	fft := fourier.NewFFT(len(seq))
	coeffs := fft.Coefficients(nil, seq)

	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag[i] = cmplx.Abs(c)
	}
	return mag
}

// CombPeaks returns the interior local maxima of mag that rise above its mean.
func CombPeaks(mag []float64) []int {
	if len(mag) < 3 {
		return nil
	}

	mean := stat.Mean(mag, nil)
	var peaks []int
	for i := 1; i < len(mag)-1; i++ {
		if mag[i] > mean && mag[i] > mag[i-1] && mag[i] >= mag[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// CombSpacing returns the mean distance in bins between comb peaks. For an
// n-point spectrum of a feedback echo the spacing is n/delaySamples.
func CombSpacing(mag []float64) (float64, error) {
	peaks := CombPeaks(mag)
	if len(peaks) < 2 {
		return 0, fmt.Errorf("%w: %d peaks", ErrNoComb, len(peaks))
	}

	gaps := make([]float64, len(peaks)-1)
	for i := range gaps {
		gaps[i] = float64(peaks[i+1] - peaks[i])
	}
	return stat.Mean(gaps, nil), nil
}

// SpectrumDelay estimates the delay in samples from the comb spacing of an
// fftSize-point spectrum.
func SpectrumDelay(mag []float64, fftSize int) (float64, error) {
	spacing, err := CombSpacing(mag)
	if err != nil {
		return 0, err
	}
	return float64(fftSize) / spacing, nil
}
