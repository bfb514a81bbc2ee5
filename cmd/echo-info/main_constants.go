package main

// Default command-line flag values
const (
	defaultSampleRate = 48000.0 // DAT/DVD sample rate
	defaultBlockSize  = 512
)

// Test signal parameters
const (
	testSignalSeconds = 1.0
	testSignalSeed    = 1
	testSignalLevel   = 0.5
)

// Demo sample rates
const (
	sampleRateCD    = 44100.0 // CD quality
	sampleRateDAT   = 48000.0 // DAT/DVD
	sampleRateHiRes = 96000.0 // Hi-res audio
	sampleRate4xDAT = 192000.0
)

// Demo buffer lengths in seconds
var demoMaxDelays = []float64{0.5, 1, 2, 5}

// Unit conversion
const (
	bytesPerKilobyte = 1024
	percentScale     = 100
	normalizedSteps  = 4 // columns in the normalized value table
)
