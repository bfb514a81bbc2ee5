package main

import (
	"log"

	echo "github.com/tphakala/go-audio-echo"
)

// processBlocks runs the processor in place over left/right in host-sized blocks.
func processBlocks(p *echo.Processor, left, right []float32, blockSize int) {
	for start := 0; start < len(left); start += blockSize {
		end := min(start+blockSize, len(left))
		p.Process(left[start:end], right[start:end], left[start:end], right[start:end])
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	enabled      bool
}

func newProgressTracker(totalFrames int64, enabled bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		enabled:     enabled,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.enabled || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
