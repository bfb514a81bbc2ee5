package engine

import "errors"

// Errors returned by Prepare and NewDelayLine. Processing never fails.
var (
	// ErrInvalidSampleRate indicates a non-positive or non-finite sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidMaxDelay indicates a maximum delay that yields no usable buffer.
	ErrInvalidMaxDelay = errors.New("invalid maximum delay")

	// ErrBufferTooLarge indicates the requested buffer exceeds the allocation cap.
	ErrBufferTooLarge = errors.New("delay buffer too large")

	// ErrInvalidVectorWidth indicates a vector width that is not a power of two
	// in [1, MaxVectorWidth].
	ErrInvalidVectorWidth = errors.New("invalid vector width")
)
