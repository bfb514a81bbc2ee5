package playback

import "time"

const (
	stereoChannels = 2
	bytesPerSample = 4 // float32

	// BytesPerFrame is the size of one float32 stereo frame as rendered by Streamer.
	BytesPerFrame = stereoChannels * bytesPerSample

	// Click source
	blipSeconds   = 0.005
	blipFrequency = 1000.0
	blipAmplitude = 0.8

	producerPoll = 2 * time.Millisecond
)
