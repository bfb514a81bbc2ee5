package echo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-echo/internal/testutil"
)

// newTestProcessor returns a processor at 1 kHz so that one millisecond of
// delay is one sample.
func newTestProcessor(t *testing.T, values ParamValues) *Processor {
	t.Helper()
	p, err := New(&Config{SampleRate: 1000, MaxDelaySeconds: 1, VectorWidth: 4, Params: &values})
	require.NoError(t, err)
	return p
}

func echoValues(delaySeconds float64, feedback, wet, dry float32, vectorized bool) ParamValues {
	return ParamValues{
		DelaySeconds: delaySeconds,
		Feedback:     feedback,
		WetMix:       wet,
		DryMix:       dry,
		Vectorized:   vectorized,
	}
}

func TestProcessor_ImpulseEchoes(t *testing.T) {
	want := []float32{0, 0, 0, 0, 1, 0, 0, 0, 0.5, 0, 0, 0, 0.25}

	for _, vectorized := range []bool{false, true} {
		t.Run(map[bool]string{false: "scalar", true: "vectorized"}[vectorized], func(t *testing.T) {
			p := newTestProcessor(t, echoValues(0.004, 0.5, 1, 0, vectorized))

			inL := testutil.Impulse(len(want), 1)
			inR := testutil.Impulse(len(want), 1)
			outL := make([]float32, len(want))
			outR := make([]float32, len(want))
			p.Process(inL, inR, outL, outR)

			testutil.AssertSlicesClose(t, want, outL, testutil.SampleTolerance)
			testutil.AssertSlicesClose(t, want, outR, testutil.SampleTolerance)
		})
	}
}

func TestProcessor_PathsMatch(t *testing.T) {
	const blocks, blockSize = 40, 96

	scalar := newTestProcessor(t, echoValues(0.037, 0.8, 0.7, 0.6, false))
	vector := newTestProcessor(t, echoValues(0.037, 0.8, 0.7, 0.6, true))

	in := testutil.Noise(blocks*blockSize, 7, 0.9)
	outS := make([]float32, len(in))
	outV := make([]float32, len(in))

	for b := range blocks {
		s := b * blockSize
		e := s + blockSize
		scalar.Process(in[s:e], in[s:e], outS[s:e], outS[s:e])
		vector.Process(in[s:e], in[s:e], outV[s:e], outV[s:e])
	}

	testutil.AssertSlicesClose(t, outS, outV, testutil.PathTolerance)
}

func TestProcessor_Bypass(t *testing.T) {
	p := newTestProcessor(t, echoValues(0.004, 0.5, 1, 0, true))
	p.Params().SetBypass(true)

	in := testutil.Sine(64, 50, 1000, 0.8)
	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	for i := range outL {
		outL[i], outR[i] = 9, 9
	}

	p.Process(in, in, outL, outR)
	assert.Equal(t, in, outL)
	assert.Equal(t, in, outR)
}

func TestProcessor_BypassFreezesBuffer(t *testing.T) {
	p := newTestProcessor(t, echoValues(0.004, 0.5, 1, 0, false))

	buf := func(n int) ([]float32, []float32) { return make([]float32, n), make([]float32, n) }

	// Impulse enters the buffer during the first two samples.
	inL := testutil.Impulse(2, 1)
	outL, outR := buf(2)
	p.Process(inL, inL, outL, outR)

	// Bypassed blocks leave buffer and cursor untouched.
	p.Params().SetBypass(true)
	silence := make([]float32, 50)
	sl, sr := buf(50)
	p.Process(silence, silence, sl, sr)
	p.Params().SetBypass(false)

	// The echo lands two samples into the resumed stream.
	resumed := make([]float32, 4)
	rl, rr := buf(4)
	p.Process(resumed, resumed, rl, rr)
	assert.Equal(t, []float32{0, 0, 1, 0}, rl)
}

func TestProcessor_ParamsApplyPerBlock(t *testing.T) {
	p := newTestProcessor(t, echoValues(0.004, 0, 1, 1, false))

	in := []float32{1, 0, 0, 0}
	out := make([]float32, 4)
	p.Process(in, in, out, out[:0:0])
	// The shortest slice wins: nothing was processed.
	assert.Equal(t, []float32{0, 0, 0, 0}, out)

	outR := make([]float32, 4)
	p.Process(in, in, out, outR)
	assert.Equal(t, []float32{1, 0, 0, 0}, out)

	p.Params().SetDryMix(0)
	p.Params().SetWetMix(0.5)
	p.Process([]float32{0, 0, 0, 0}, []float32{0, 0, 0, 0}, out, outR)
	assert.Equal(t, []float32{0.5, 0, 0, 0}, out)
}

func TestProcessor_InPlace(t *testing.T) {
	values := echoValues(0.005, 0.6, 0.7, 0.9, true)
	ref := newTestProcessor(t, values)
	inPlace := newTestProcessor(t, values)

	in := testutil.Noise(300, 3, 0.5)
	wantL := make([]float32, len(in))
	wantR := make([]float32, len(in))
	ref.Process(in, in, wantL, wantR)

	gotL := append([]float32(nil), in...)
	gotR := append([]float32(nil), in...)
	inPlace.Process(gotL, gotR, gotL, gotR)

	testutil.AssertSlicesClose(t, wantL, gotL, 0)
	testutil.AssertSlicesClose(t, wantR, gotR, 0)
}

func TestProcessor_ResetAndPrepare(t *testing.T) {
	p := newTestProcessor(t, echoValues(0.004, 0.9, 1, 0, false))

	out := make([]float32, 8)
	outR := make([]float32, 8)
	p.Process(testutil.Impulse(8, 1), testutil.Impulse(8, 1), out, outR)
	require.NotZero(t, out[4])

	p.Reset()
	zeros := make([]float32, 16)
	p.Process(zeros, zeros, out, outR)
	assert.Equal(t, make([]float32, 8), out)

	require.NoError(t, p.Prepare(2000))
	assert.InDelta(t, 2000.0, p.SampleRate(), 1e-12)
	assert.Equal(t, 2000, p.Info().MaxDelaySamples)

	require.Error(t, p.Prepare(0))
}

func TestProcessor_Stability(t *testing.T) {
	p := newTestProcessor(t, echoValues(0.003, 0.99, 1, 1, true))

	in := testutil.Noise(4096, 11, 1)
	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	for s := 0; s < len(in); s += 128 {
		p.Process(in[s:s+128], in[s:s+128], outL[s:s+128], outR[s:s+128])
	}

	testutil.AssertNoNaNOrInf(t, outL)
	testutil.AssertAllInRange(t, outL, -2, 2)
	testutil.AssertAllInRange(t, outR, -2, 2)
}

func TestProcessor_ProcessInterleaved(t *testing.T) {
	values := echoValues(0.004, 0.5, 1, 0.5, true)
	planar := newTestProcessor(t, values)
	inter := newTestProcessor(t, values)

	left := testutil.Noise(64, 1, 0.5)
	right := testutil.Noise(64, 2, 0.5)
	outL := make([]float32, 64)
	outR := make([]float32, 64)
	planar.Process(left, right, outL, outR)

	frames, err := InterleaveStereo(left, right)
	require.NoError(t, err)
	require.NoError(t, inter.ProcessInterleaved(frames, frames))

	gotL, gotR, err := DeinterleaveStereo(frames)
	require.NoError(t, err)
	testutil.AssertSlicesClose(t, outL, gotL, 0)
	testutil.AssertSlicesClose(t, outR, gotR, 0)

	require.ErrorIs(t, inter.ProcessInterleaved(make([]float32, 3), make([]float32, 3)), ErrUnsupportedLayout)
	require.ErrorIs(t, inter.ProcessInterleaved(make([]float32, 4), make([]float32, 2)), ErrUnsupportedLayout)
}

func TestProcessor_CPULoad(t *testing.T) {
	p := newTestProcessor(t, DefaultParamValues())
	assert.Zero(t, p.CPULoad())

	buf := make([]float32, 256)
	for range 20 {
		p.Process(buf, buf, buf, buf)
	}
	load := p.CPULoad()
	assert.GreaterOrEqual(t, load, float32(0))
	assert.LessOrEqual(t, load, float32(1))
}

func TestProcessor_NoAllocations(t *testing.T) {
	p, err := New(&Config{SampleRate: 48000})
	require.NoError(t, err)

	in := testutil.Noise(512, 5, 0.5)
	outL := make([]float32, 512)
	outR := make([]float32, 512)

	for _, vectorized := range []bool{false, true} {
		p.Params().SetVectorized(vectorized)
		allocs := testing.AllocsPerRun(100, func() {
			p.Process(in, in, outL, outR)
		})
		assert.Zero(t, allocs, "vectorized=%v", vectorized)
	}
}
