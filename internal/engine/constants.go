package engine

// Defaults applied by NewDelayLine before the first Prepare.
const (
	defaultSampleRate      = 48000.0
	defaultMaxDelaySeconds = 5.0
	defaultDelaySeconds    = 1.0
	defaultFeedback        = 0.3
	defaultWetMix          = 0.5
	defaultDryMix          = 0.5
)

// Parameter limits.
const (
	// minDelaySamples is the shortest loop the cursor can run.
	minDelaySamples = 1

	// maxFeedback keeps the recurrence pole strictly inside the unit circle.
	maxFeedback = 0.99

	minMix = 0.0
	maxMix = 1.0

	// clipLimit bounds every value written back into the delay buffers.
	clipLimit = 1.0
)

// Vector path constants.
const (
	// DefaultVectorWidth is eight float32 lanes (one 256-bit AVX2 register).
	DefaultVectorWidth = 8

	// MaxVectorWidth is the widest lane count accepted by WithVectorWidth.
	MaxVectorWidth = 64

	// scratchSamples is the per-channel scratch length used by the vector
	// kernels. Vector runs longer than this are processed in batches.
	scratchSamples = 1024
)

// Memory limits.
const (
	// maxBufferSamples caps each channel buffer at 64M samples (256 MB).
	maxBufferSamples = 1 << 26

	bytesPerFloat32 = 4
	stereoChannels  = 2
)
