package echo

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ParamID identifies a host-facing parameter.
type ParamID int

// Parameter identifiers in layout order.
const (
	ParamDelay ParamID = iota
	ParamFeedback
	ParamWet
	ParamDry
	ParamBypass
	ParamVectorized

	numParams
)

// String returns the stable key of the parameter.
func (id ParamID) String() string {
	if id < 0 || id >= numParams {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return paramTable[id].Key
}

// Info returns the layout entry for the parameter.
func (id ParamID) Info() (ParamInfo, bool) {
	if id < 0 || id >= numParams {
		return ParamInfo{}, false
	}
	return paramTable[id], true
}

// ParamRange maps plain parameter values to the normalized [0, 1] range used
// by hosts. A Skew below 1 spends more of the normalized range on low values.
type ParamRange struct {
	Min  float64
	Max  float64
	Step float64 // 0 for continuous
	Skew float64 // 1 for linear
}

// Clamp limits v to [Min, Max]. NaN maps to Min.
func (r ParamRange) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Snap rounds v to the nearest step and clamps the result.
func (r ParamRange) Snap(v float64) float64 {
	v = r.Clamp(v)
	if r.Step > 0 {
		v = r.Min + r.Step*math.Round((v-r.Min)/r.Step)
	}
	return r.Clamp(v)
}

// ConvertToNormalized maps a plain value to [0, 1].
func (r ParamRange) ConvertToNormalized(v float64) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	proportion := (r.Clamp(v) - r.Min) / span
	if r.Skew > 0 && r.Skew != 1 {
		proportion = math.Pow(proportion, r.Skew)
	}
	return proportion
}

// ConvertFromNormalized maps a normalized value in [0, 1] to a snapped plain value.
func (r ParamRange) ConvertFromNormalized(n float64) float64 {
	if math.IsNaN(n) {
		n = 0
	}
	proportion := math.Max(0, math.Min(1, n))
	if r.Skew > 0 && r.Skew != 1 && proportion > 0 {
		proportion = math.Exp(math.Log(proportion) / r.Skew)
	}
	return r.Snap(r.Min + (r.Max-r.Min)*proportion)
}

// ParamInfo describes one entry of the parameter surface.
type ParamInfo struct {
	ID      ParamID
	Key     string
	Name    string
	Label   string // unit shown next to the value
	Range   ParamRange
	Default float64
	Toggle  bool
}

var toggleRange = ParamRange{Min: 0, Max: 1, Step: 1, Skew: 1}

var paramTable = [numParams]ParamInfo{
	ParamDelay: {
		ID: ParamDelay, Key: "delay", Name: "Delay", Label: "s",
		Range:   ParamRange{Min: minDelaySeconds, Max: maxDelaySeconds, Step: delayStepSeconds, Skew: delaySkew},
		Default: defaultDelaySeconds,
	},
	ParamFeedback: {
		ID: ParamFeedback, Key: "feedback", Name: "Feedback",
		Range:   ParamRange{Min: minFeedback, Max: maxFeedback, Step: gainStep, Skew: 1},
		Default: defaultFeedback,
	},
	ParamWet: {
		ID: ParamWet, Key: "wet", Name: "Wet",
		Range:   ParamRange{Min: minMix, Max: maxMix, Step: gainStep, Skew: 1},
		Default: defaultWetMix,
	},
	ParamDry: {
		ID: ParamDry, Key: "dry", Name: "Dry",
		Range:   ParamRange{Min: minMix, Max: maxMix, Step: gainStep, Skew: 1},
		Default: defaultDryMix,
	},
	ParamBypass: {
		ID: ParamBypass, Key: "bypass", Name: "Bypass",
		Range: toggleRange, Default: 0, Toggle: true,
	},
	ParamVectorized: {
		ID: ParamVectorized, Key: "vectorized", Name: "Vectorized",
		Range: toggleRange, Default: 1, Toggle: true,
	},
}

// ParamLayout returns the parameter surface in host order.
func ParamLayout() []ParamInfo {
	out := make([]ParamInfo, numParams)
	copy(out, paramTable[:])
	return out
}

// LookupParam returns the parameter with the given key.
func LookupParam(key string) (ParamID, bool) {
	for id := range numParams {
		if paramTable[id].Key == key {
			return id, true
		}
	}
	return 0, false
}

// ParamValues is a plain snapshot of every parameter.
type ParamValues struct {
	DelaySeconds float64
	Feedback     float32
	WetMix       float32
	DryMix       float32
	Bypass       bool
	Vectorized   bool
}

// DefaultParamValues returns the layout defaults.
func DefaultParamValues() ParamValues {
	return ParamValues{
		DelaySeconds: defaultDelaySeconds,
		Feedback:     defaultFeedback,
		WetMix:       defaultWetMix,
		DryMix:       defaultDryMix,
		Bypass:       false,
		Vectorized:   true,
	}
}

type atomicFloat64 struct{ bits atomic.Uint64 }

func (a *atomicFloat64) Load() float64   { return math.Float64frombits(a.bits.Load()) }
func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

type atomicFloat32 struct{ bits atomic.Uint32 }

func (a *atomicFloat32) Load() float32   { return math.Float32frombits(a.bits.Load()) }
func (a *atomicFloat32) Store(v float32) { a.bits.Store(math.Float32bits(v)) }

// Params holds the live parameter registers. Every field is individually
// atomic: setters may run on any goroutine while the audio goroutine reads
// a snapshot per block. Values are clamped to their layout range on store.
type Params struct {
	delaySeconds atomicFloat64
	feedback     atomicFloat32
	wet          atomicFloat32
	dry          atomicFloat32
	bypass       atomic.Bool
	vectorized   atomic.Bool
}

// NewParams returns registers initialised to v.
func NewParams(v ParamValues) *Params {
	p := &Params{}
	p.Store(v)
	return p
}

// SetDelaySeconds sets the delay time.
func (p *Params) SetDelaySeconds(seconds float64) {
	p.delaySeconds.Store(paramTable[ParamDelay].Range.Clamp(seconds))
}

// SetFeedback sets the feedback gain.
func (p *Params) SetFeedback(feedback float32) {
	p.feedback.Store(float32(paramTable[ParamFeedback].Range.Clamp(float64(feedback))))
}

// SetWetMix sets the delayed signal gain.
func (p *Params) SetWetMix(wet float32) {
	p.wet.Store(float32(paramTable[ParamWet].Range.Clamp(float64(wet))))
}

// SetDryMix sets the direct signal gain.
func (p *Params) SetDryMix(dry float32) {
	p.dry.Store(float32(paramTable[ParamDry].Range.Clamp(float64(dry))))
}

// SetBypass enables or disables bypass.
func (p *Params) SetBypass(on bool) { p.bypass.Store(on) }

// SetVectorized selects the vectorized block path.
func (p *Params) SetVectorized(on bool) { p.vectorized.Store(on) }

// DelaySeconds returns the current delay time.
func (p *Params) DelaySeconds() float64 { return p.delaySeconds.Load() }

// Feedback returns the current feedback gain.
func (p *Params) Feedback() float32 { return p.feedback.Load() }

// WetMix returns the current wet gain.
func (p *Params) WetMix() float32 { return p.wet.Load() }

// DryMix returns the current dry gain.
func (p *Params) DryMix() float32 { return p.dry.Load() }

// Bypass reports whether bypass is on.
func (p *Params) Bypass() bool { return p.bypass.Load() }

// Vectorized reports whether the vectorized path is selected.
func (p *Params) Vectorized() bool { return p.vectorized.Load() }

// Store writes every register from v.
func (p *Params) Store(v ParamValues) {
	p.SetDelaySeconds(v.DelaySeconds)
	p.SetFeedback(v.Feedback)
	p.SetWetMix(v.WetMix)
	p.SetDryMix(v.DryMix)
	p.SetBypass(v.Bypass)
	p.SetVectorized(v.Vectorized)
}

// Snapshot reads every register once. Fields are read independently, so a
// concurrent writer may be observed on some fields and not others.
func (p *Params) Snapshot() ParamValues {
	return ParamValues{
		DelaySeconds: p.delaySeconds.Load(),
		Feedback:     p.feedback.Load(),
		WetMix:       p.wet.Load(),
		DryMix:       p.dry.Load(),
		Bypass:       p.bypass.Load(),
		Vectorized:   p.vectorized.Load(),
	}
}

// Value returns the plain value of a parameter. Toggles read as 0 or 1.
func (p *Params) Value(id ParamID) (float64, error) {
	switch id {
	case ParamDelay:
		return p.DelaySeconds(), nil
	case ParamFeedback:
		return float64(p.Feedback()), nil
	case ParamWet:
		return float64(p.WetMix()), nil
	case ParamDry:
		return float64(p.DryMix()), nil
	case ParamBypass:
		return boolToFloat(p.Bypass()), nil
	case ParamVectorized:
		return boolToFloat(p.Vectorized()), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownParam, int(id))
	}
}

// SetValue sets a parameter from a plain value. Toggles switch on above 0.5.
func (p *Params) SetValue(id ParamID, v float64) error {
	switch id {
	case ParamDelay:
		p.SetDelaySeconds(v)
	case ParamFeedback:
		p.SetFeedback(float32(v))
	case ParamWet:
		p.SetWetMix(float32(v))
	case ParamDry:
		p.SetDryMix(float32(v))
	case ParamBypass:
		p.SetBypass(v > boolThreshold)
	case ParamVectorized:
		p.SetVectorized(v > boolThreshold)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownParam, int(id))
	}
	return nil
}

// SetNormalized sets a parameter from a host-normalized value in [0, 1].
func (p *Params) SetNormalized(id ParamID, n float64) error {
	info, ok := id.Info()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownParam, int(id))
	}
	return p.SetValue(id, info.Range.ConvertFromNormalized(n))
}

// Normalized returns a parameter as a host-normalized value in [0, 1].
func (p *Params) Normalized(id ParamID) (float64, error) {
	v, err := p.Value(id)
	if err != nil {
		return 0, err
	}
	return paramTable[id].Range.ConvertToNormalized(v), nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
