package echo

import "time"

// LoadMeter tracks the share of real time an audio callback spends working.
//
// Each Update computes the instantaneous load as wall time divided by the
// audio duration of the block, capped at 1, and ramps a smoothed value
// linearly toward it. The ramp advances by the block length, so the
// smoothing time is measured in audio time regardless of block size.
//
// Update must be called from the audio goroutine only. Load is safe from
// any goroutine.
type LoadMeter struct {
	sampleRate  float64
	rampSamples int

	current   float64
	target    float64
	step      float64
	countdown int

	published atomicFloat32
}

// NewLoadMeter creates a meter that reaches a new load level after
// smoothingSeconds of processed audio.
func NewLoadMeter(sampleRate, smoothingSeconds float64) *LoadMeter {
	m := &LoadMeter{}
	m.configure(sampleRate, smoothingSeconds)
	return m
}

func (m *LoadMeter) configure(sampleRate, smoothingSeconds float64) {
	m.sampleRate = sampleRate
	m.rampSamples = max(int(smoothingSeconds*sampleRate), 0)
	m.current, m.target, m.step, m.countdown = 0, 0, 0, 0
	m.published.Store(0)
}

// Reset zeroes the meter and keeps the smoothing time, rescaled to sampleRate.
func (m *LoadMeter) Reset(sampleRate float64) {
	seconds := 0.0
	if m.sampleRate > 0 {
		seconds = float64(m.rampSamples) / m.sampleRate
	}
	m.configure(sampleRate, seconds)
}

// Update records that processing samples frames took elapsed wall time.
func (m *LoadMeter) Update(elapsed time.Duration, samples int) {
	if samples <= 0 || m.sampleRate <= 0 {
		return
	}

	period := float64(samples) / m.sampleRate
	load := min(elapsed.Seconds()/period, 1)
	m.setTarget(max(load, 0))
	m.advance(samples)

	m.published.Store(float32(m.current))
}

func (m *LoadMeter) setTarget(v float64) {
	if v == m.target {
		return
	}
	m.target = v
	if m.rampSamples == 0 {
		m.current = v
		m.countdown = 0
		return
	}
	m.countdown = m.rampSamples
	m.step = (m.target - m.current) / float64(m.countdown)
}

func (m *LoadMeter) advance(samples int) {
	if m.countdown == 0 {
		return
	}
	if samples >= m.countdown {
		m.current = m.target
		m.countdown = 0
		return
	}
	m.current += m.step * float64(samples)
	m.countdown -= samples
}

// Load returns the smoothed load in [0, 1].
func (m *LoadMeter) Load() float32 {
	return m.published.Load()
}
