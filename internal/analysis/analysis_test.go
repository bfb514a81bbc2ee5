package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echo "github.com/tphakala/go-audio-echo"
	"github.com/tphakala/go-audio-echo/internal/testutil"
)

// syntheticIR builds dry*δ[n] + sum_k wet*fb^k δ[n-(k+1)D].
func syntheticIR(n, delay int, dry, wet, fb float64) []float32 {
	ir := make([]float32, n)
	ir[0] = float32(dry)
	g := wet
	for idx := delay; idx < n; idx += delay {
		ir[idx] = float32(g)
		g *= fb
	}
	return ir
}

func TestImpulseResponse_Synthetic(t *testing.T) {
	ir := syntheticIR(2000, 100, 0.5, 0.8, 0.6)

	r, err := ImpulseResponse(ir, 1000, DefaultThreshold)
	require.NoError(t, err)

	assert.Equal(t, 100, r.DelaySamples)
	assert.InDelta(t, 0.1, r.DelaySeconds, 1e-12)
	assert.InDelta(t, 0.5, r.DryGain, 1e-6)
	assert.InDelta(t, 0.8, r.WetGain, 1e-6)
	assert.InDelta(t, 0.6, r.Feedback, 1e-4)
	assert.InDelta(t, 1.0, r.FitR2, 1e-6)
	assert.Len(t, r.Echoes, 18)
	assert.InDelta(t, 3/-math.Log10(0.6)*0.1, r.DecaySeconds, 1e-3)

	for k, e := range r.Echoes {
		assert.Equal(t, (k+1)*100, e.Index)
	}
}

func TestImpulseResponse_NoFeedback(t *testing.T) {
	ir := syntheticIR(500, 120, 1, 0.5, 0)

	r, err := ImpulseResponse(ir, 1000, DefaultThreshold)
	require.NoError(t, err)
	assert.Len(t, r.Echoes, 1)
	assert.Zero(t, r.Feedback)
	assert.InDelta(t, r.DelaySeconds, r.DecaySeconds, 1e-12)
}

func TestImpulseResponse_Errors(t *testing.T) {
	_, err := ImpulseResponse([]float32{1}, 1000, DefaultThreshold)
	require.ErrorIs(t, err, ErrTooShort)

	_, err = ImpulseResponse(testutil.Impulse(100, 1), 1000, DefaultThreshold)
	require.ErrorIs(t, err, ErrNoEcho)
}

func TestFitDecay(t *testing.T) {
	feedback, r2 := FitDecay(nil)
	assert.Zero(t, feedback)
	assert.Zero(t, r2)

	echoes := []Echo{{100, 1}, {200, -0.25}, {300, 0.0625}}
	feedback, r2 = FitDecay(echoes)
	assert.InDelta(t, 0.25, feedback, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestCombSpacing_Synthetic(t *testing.T) {
	const n, delay = 4096, 64

	mag := MagnitudeSpectrum(syntheticIR(n, delay, 1, 1, 0.5))
	require.Len(t, mag, n/2+1)

	// |H| peaks at 3 and dips to 1/3 for this response.
	assert.InDelta(t, 3.0, mag[0], 1e-3)
	assert.InDelta(t, 1.0/3, mag[n/delay/2], 1e-3)

	peaks := CombPeaks(mag)
	require.NotEmpty(t, peaks)
	for _, p := range peaks {
		assert.Zero(t, p%(n/delay), "peak at bin %d", p)
	}

	got, err := SpectrumDelay(mag, n)
	require.NoError(t, err)
	assert.InDelta(t, delay, got, 1e-9)
}

func TestCombSpacing_Flat(t *testing.T) {
	mag := MagnitudeSpectrum(testutil.Impulse(256, 1))
	_, err := CombSpacing(mag)
	require.ErrorIs(t, err, ErrNoComb)

	assert.Nil(t, MagnitudeSpectrum(nil))
	assert.Nil(t, CombPeaks([]float64{1, 2}))
}

// TestProcessorResponse measures the processor end to end.
func TestProcessorResponse(t *testing.T) {
	const rate = 1000.0

	for _, vectorized := range []bool{false, true} {
		values := echo.ParamValues{DelaySeconds: 0.064, Feedback: 0.5, WetMix: 1, DryMix: 1, Vectorized: vectorized}
		ir, _, err := echo.EchoStereo(testutil.Impulse(4096, 1), make([]float32, 4096), rate, values, 0)
		require.NoError(t, err)

		r, err := ImpulseResponse(ir, rate, DefaultThreshold)
		require.NoError(t, err)
		assert.Equal(t, 64, r.DelaySamples)
		assert.InDelta(t, 0.5, r.Feedback, 1e-4)
		assert.InDelta(t, 1.0, r.WetGain, 1e-6)

		got, err := SpectrumDelay(MagnitudeSpectrum(ir), len(ir))
		require.NoError(t, err)
		assert.InDelta(t, 64, got, 1e-9)
	}
}
