package echo

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-echo/internal/engine"
)

// Config holds the construction parameters for a Processor.
type Config struct {
	// SampleRate of the audio passed to Process, in Hz.
	SampleRate float64

	// MaxDelaySeconds sizes the delay buffers. Zero selects
	// DefaultMaxDelaySeconds. Delays beyond it are clamped.
	MaxDelaySeconds float64

	// VectorWidth is the lane count of the vectorized path, a power of two.
	// Zero selects the engine default.
	VectorWidth int

	// SmoothingSeconds is the ramp time of the CPU load meter. Zero selects
	// DefaultSmoothingSeconds.
	SmoothingSeconds float64

	// Params are the initial parameter values. Nil selects the defaults.
	Params *ParamValues
}

// Errors
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid echo configuration")

	// ErrUnsupportedLayout indicates audio that is not two equal-length channels.
	ErrUnsupportedLayout = errors.New("unsupported channel layout: stereo required")

	// ErrUnknownParam indicates a ParamID outside the layout.
	ErrUnknownParam = errors.New("unknown parameter")
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be in (0, %v]", ErrInvalidConfig, maxSampleRate)
	}

	if math.IsNaN(c.MaxDelaySeconds) || c.MaxDelaySeconds < 0 || c.MaxDelaySeconds > DefaultMaxDelaySeconds {
		return fmt.Errorf("%w: max delay must be in [0, %v] seconds", ErrInvalidConfig, DefaultMaxDelaySeconds)
	}

	if c.VectorWidth < 0 || c.VectorWidth > maxVectorWidth || c.VectorWidth&(c.VectorWidth-1) != 0 {
		return fmt.Errorf("%w: vector width must be a power of two up to %d", ErrInvalidConfig, maxVectorWidth)
	}

	if math.IsNaN(c.SmoothingSeconds) || math.IsInf(c.SmoothingSeconds, 0) || c.SmoothingSeconds < 0 {
		return fmt.Errorf("%w: smoothing time must be non-negative", ErrInvalidConfig)
	}

	if c.Params != nil && math.IsNaN(c.Params.DelaySeconds) {
		return fmt.Errorf("%w: initial delay is NaN", ErrInvalidConfig)
	}

	return nil
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.MaxDelaySeconds == 0 {
		c.MaxDelaySeconds = DefaultMaxDelaySeconds
	}
	if c.SmoothingSeconds == 0 {
		c.SmoothingSeconds = DefaultSmoothingSeconds
	}
	return c
}

// New creates a prepared Processor from config.
func New(config *Config) (*Processor, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := config.withDefaults()

	var opts []engine.Option
	if cfg.VectorWidth > 0 {
		opts = append(opts, engine.WithVectorWidth(cfg.VectorWidth))
	}

	line, err := engine.NewDelayLine(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	initial := DefaultParamValues()
	if cfg.Params != nil {
		initial = *cfg.Params
	}

	p := &Processor{
		line:            line,
		params:          NewParams(initial),
		meter:           NewLoadMeter(cfg.SampleRate, cfg.SmoothingSeconds),
		maxDelaySeconds: cfg.MaxDelaySeconds,
	}

	if err := p.Prepare(cfg.SampleRate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return p, nil
}
