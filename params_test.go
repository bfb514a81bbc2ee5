package echo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamLayout(t *testing.T) {
	layout := ParamLayout()
	require.Len(t, layout, int(numParams))

	keys := make(map[string]bool)
	for i, info := range layout {
		assert.Equal(t, ParamID(i), info.ID, "layout order")
		assert.False(t, keys[info.Key], "duplicate key %q", info.Key)
		keys[info.Key] = true
		assert.GreaterOrEqual(t, info.Default, info.Range.Min, info.Key)
		assert.LessOrEqual(t, info.Default, info.Range.Max, info.Key)
	}

	delay := layout[ParamDelay]
	assert.InDelta(t, 0.001, delay.Range.Min, 1e-12)
	assert.InDelta(t, 5.0, delay.Range.Max, 1e-12)
	assert.InDelta(t, 0.3, delay.Range.Skew, 1e-12)
	assert.InDelta(t, 1.0, delay.Default, 1e-12)

	assert.InDelta(t, 0.99, layout[ParamFeedback].Range.Max, 1e-12)
	assert.True(t, layout[ParamBypass].Toggle)
	assert.True(t, layout[ParamVectorized].Toggle)
	assert.InDelta(t, 1.0, layout[ParamVectorized].Default, 1e-12)

	// Callers get a copy.
	layout[ParamDelay].Default = 42
	assert.InDelta(t, 1.0, ParamLayout()[ParamDelay].Default, 1e-12)
}

func TestParamID_String(t *testing.T) {
	assert.Equal(t, "delay", ParamDelay.String())
	assert.Equal(t, "vectorized", ParamVectorized.String())
	assert.Equal(t, "ParamID(99)", ParamID(99).String())

	_, ok := ParamID(-1).Info()
	assert.False(t, ok)
}

func TestLookupParam(t *testing.T) {
	for _, info := range ParamLayout() {
		id, ok := LookupParam(info.Key)
		assert.True(t, ok, info.Key)
		assert.Equal(t, info.ID, id)
	}

	_, ok := LookupParam("reverb")
	assert.False(t, ok)
}

func TestParamRange_Normalized(t *testing.T) {
	delay := paramTable[ParamDelay].Range

	t.Run("endpoints", func(t *testing.T) {
		assert.InDelta(t, delay.Min, delay.ConvertFromNormalized(0), 1e-12)
		assert.InDelta(t, delay.Max, delay.ConvertFromNormalized(1), 1e-12)
		assert.InDelta(t, 0.0, delay.ConvertToNormalized(delay.Min), 1e-12)
		assert.InDelta(t, 1.0, delay.ConvertToNormalized(delay.Max), 1e-12)
	})

	t.Run("skew favours short delays", func(t *testing.T) {
		mid := delay.ConvertFromNormalized(0.5)
		assert.Less(t, mid, (delay.Min+delay.Max)/2)
		assert.InDelta(t, 0.497, mid, 0.002)
	})

	t.Run("monotonic", func(t *testing.T) {
		prev := delay.ConvertFromNormalized(0)
		for i := 1; i <= 100; i++ {
			v := delay.ConvertFromNormalized(float64(i) / 100)
			assert.GreaterOrEqual(t, v, prev)
			prev = v
		}
	})

	t.Run("round trip on step grid", func(t *testing.T) {
		for _, v := range []float64{0.001, 0.01, 0.25, 1, 2.5, 5} {
			got := delay.ConvertFromNormalized(delay.ConvertToNormalized(v))
			assert.InDelta(t, v, got, 1e-9, "value %v", v)
		}
	})

	t.Run("out of range input", func(t *testing.T) {
		assert.InDelta(t, delay.Min, delay.ConvertFromNormalized(-1), 1e-12)
		assert.InDelta(t, delay.Max, delay.ConvertFromNormalized(2), 1e-12)
		assert.InDelta(t, delay.Min, delay.ConvertFromNormalized(math.NaN()), 1e-12)
	})

	t.Run("linear snaps to step", func(t *testing.T) {
		fb := paramTable[ParamFeedback].Range
		assert.InDelta(t, 0.5, fb.ConvertFromNormalized(0.5/0.99), 1e-9)
		assert.InDelta(t, 0.3, fb.ConvertFromNormalized(0.3031/0.99), 1e-9)
		assert.InDelta(t, 0.99, fb.ConvertFromNormalized(1), 1e-9)
	})
}

func TestParams_SettersClamp(t *testing.T) {
	p := NewParams(DefaultParamValues())

	tests := []struct {
		name string
		set  func()
		get  func() float64
		want float64
	}{
		{"delay below min", func() { p.SetDelaySeconds(0) }, p.DelaySeconds, 0.001},
		{"delay above max", func() { p.SetDelaySeconds(10) }, p.DelaySeconds, 5},
		{"delay NaN", func() { p.SetDelaySeconds(math.NaN()) }, p.DelaySeconds, 0.001},
		{"feedback above max", func() { p.SetFeedback(1.5) }, func() float64 { return float64(p.Feedback()) }, 0.99},
		{"feedback negative", func() { p.SetFeedback(-0.2) }, func() float64 { return float64(p.Feedback()) }, 0},
		{"wet above max", func() { p.SetWetMix(2) }, func() float64 { return float64(p.WetMix()) }, 1},
		{"dry negative", func() { p.SetDryMix(-1) }, func() float64 { return float64(p.DryMix()) }, 0},
		{"dry in range", func() { p.SetDryMix(0.25) }, func() float64 { return float64(p.DryMix()) }, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			assert.InDelta(t, tt.want, tt.get(), 1e-6)
		})
	}
}

func TestParams_StoreAndSnapshot(t *testing.T) {
	want := ParamValues{
		DelaySeconds: 0.375,
		Feedback:     0.6,
		WetMix:       0.8,
		DryMix:       0.1,
		Bypass:       true,
		Vectorized:   false,
	}
	p := NewParams(want)
	assert.Equal(t, want, p.Snapshot())

	p.SetBypass(false)
	p.SetVectorized(true)
	got := p.Snapshot()
	assert.False(t, got.Bypass)
	assert.True(t, got.Vectorized)
}

func TestParams_ValueByID(t *testing.T) {
	p := NewParams(DefaultParamValues())

	require.NoError(t, p.SetValue(ParamDelay, 0.25))
	require.NoError(t, p.SetValue(ParamFeedback, 0.7))
	require.NoError(t, p.SetValue(ParamWet, 0.4))
	require.NoError(t, p.SetValue(ParamDry, 0.9))
	require.NoError(t, p.SetValue(ParamBypass, 1))
	require.NoError(t, p.SetValue(ParamVectorized, 0))

	for id, want := range map[ParamID]float64{
		ParamDelay:      0.25,
		ParamFeedback:   0.7,
		ParamWet:        0.4,
		ParamDry:        0.9,
		ParamBypass:     1,
		ParamVectorized: 0,
	} {
		got, err := p.Value(id)
		require.NoError(t, err, id.String())
		assert.InDelta(t, want, got, 1e-6, id.String())
	}

	_, err := p.Value(numParams)
	require.ErrorIs(t, err, ErrUnknownParam)
	require.ErrorIs(t, p.SetValue(numParams, 1), ErrUnknownParam)
	require.ErrorIs(t, p.SetNormalized(ParamID(-1), 1), ErrUnknownParam)
}

func TestParams_Normalized(t *testing.T) {
	p := NewParams(DefaultParamValues())

	require.NoError(t, p.SetNormalized(ParamDelay, 1))
	assert.InDelta(t, 5.0, p.DelaySeconds(), 1e-9)

	require.NoError(t, p.SetNormalized(ParamWet, 0.25))
	n, err := p.Normalized(ParamWet)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, n, 1e-6)

	require.NoError(t, p.SetNormalized(ParamBypass, 0.7))
	assert.True(t, p.Bypass())
	require.NoError(t, p.SetNormalized(ParamBypass, 0.2))
	assert.False(t, p.Bypass())
}
