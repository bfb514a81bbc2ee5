package echo

// Channel constants
const (
	stereoChannels = 2 // The only supported layout
)

// Engine and host defaults
const (
	// DefaultMaxDelaySeconds is the buffer length allocated per channel and
	// the upper bound of the delay parameter.
	DefaultMaxDelaySeconds = 5.0

	// DefaultBlockSize is the block length used by the offline helpers.
	DefaultBlockSize = 512

	// DefaultSmoothingSeconds is the CPU load meter ramp time.
	DefaultSmoothingSeconds = 0.5
)

// Parameter surface limits and defaults
const (
	minDelaySeconds     = 0.001
	maxDelaySeconds     = DefaultMaxDelaySeconds
	delayStepSeconds    = 0.001
	delaySkew           = 0.3
	defaultDelaySeconds = 1.0

	minFeedback     = 0.0
	maxFeedback     = 0.99
	defaultFeedback = 0.3

	minMix        = 0.0
	maxMix        = 1.0
	defaultWetMix = 0.5
	defaultDryMix = 0.5

	gainStep = 0.01
)

// Validation limits
const (
	maxSampleRate  = 1536000.0 // 32x 48 kHz
	maxVectorWidth = 64
	boolThreshold  = 0.5 // plain values above this switch a toggle on
)
