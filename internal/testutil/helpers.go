// Package testutil provides reusable test helper functions for echo tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// Default tolerances for various test scenarios.
const (
	// PathTolerance bounds the scalar/vector path difference (relative).
	PathTolerance = 1e-5

	// SampleTolerance is the absolute tolerance for exact-arithmetic checks.
	SampleTolerance = 1e-6
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float32, minVal, maxVal float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertSlicesClose verifies that two float32 slices have equal length and
// that every element pair differs by at most tolerance relative to the
// larger magnitude (absolute below 1).
func AssertSlicesClose(t *testing.T, expected, actual []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		e, a := float64(expected[i]), float64(actual[i])
		scale := math.Max(1, math.Max(math.Abs(e), math.Abs(a)))
		if math.Abs(e-a) > tolerance*scale {
			return assert.Fail(t, "slices differ",
				"index %d: expected %v, actual %v (tolerance %e)", i, e, a, tolerance)
		}
	}
	return true
}

// MaxAbsDiff returns the largest element-wise absolute difference.
func MaxAbsDiff(a, b []float32) float64 {
	return floats.Distance(ToFloat64(a), ToFloat64(b), math.Inf(1))
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// ToFloat64 widens a float32 slice.
func ToFloat64(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

// Impulse returns n samples with amplitude at index 0 and silence after.
func Impulse(n int, amplitude float32) []float32 {
	s := make([]float32, n)
	if n > 0 {
		s[0] = amplitude
	}
	return s
}

// Sine returns n samples of a sine at freq Hz.
func Sine(n int, freq, sampleRate float64, amplitude float32) []float32 {
	s := make([]float32, n)
	omega := 2 * math.Pi * freq / sampleRate
	for i := range s {
		s[i] = amplitude * float32(math.Sin(omega*float64(i)))
	}
	return s
}

// Noise returns n deterministic pseudo-random samples in [-amplitude, amplitude].
func Noise(n int, seed uint32, amplitude float32) []float32 {
	s := make([]float32, n)
	state := seed | 1
	for i := range s {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		s[i] = amplitude * (float32(state)/float32(math.MaxUint32)*2 - 1)
	}
	return s
}
