package playback

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"
	"time"

	echo "github.com/tphakala/go-audio-echo"
	"github.com/tphakala/go-audio-echo/internal/ringbuf"
	"github.com/tphakala/go-audio-echo/internal/simdops"
)

// Streamer is the io.Reader handed to the audio device. Each Read pulls
// interleaved frames from the ring, runs the processor and encodes the result
// as float32 little-endian. Once the producer has finished and the ring is
// empty it renders tailFrames of silence through the processor, then returns
// io.EOF.
//
// Read does not allocate or block.
type Streamer struct {
	proc *echo.Processor
	ring *ringbuf.Buffer
	ops  *simdops.Ops

	interleaved []float32
	left        []float32
	right       []float32

	sourceDone    *atomic.Bool
	tailRemaining int
	underruns     atomic.Int64
}

// NewStreamer returns a Streamer that processes up to blockFrames frames per
// Process call.
func NewStreamer(p *echo.Processor, ring *ringbuf.Buffer, blockFrames, tailFrames int, sourceDone *atomic.Bool) *Streamer {
	return &Streamer{
		proc:          p,
		ring:          ring,
		ops:           simdops.Float32Ops(),
		interleaved:   make([]float32, blockFrames*stereoChannels),
		left:          make([]float32, blockFrames),
		right:         make([]float32, blockFrames),
		sourceDone:    sourceDone,
		tailRemaining: tailFrames,
	}
}

// Read implements io.Reader.
func (s *Streamer) Read(buf []byte) (int, error) {
	total := len(buf) / BytesPerFrame
	block := len(s.left)

	done := 0
	for done < total {
		n := min(total-done, block)

		// Load before reading so a finished producer's last write is visible.
		finished := s.sourceDone.Load()
		got := s.ring.Read(s.interleaved[:n*stereoChannels]) / stereoChannels

		if got < n {
			clear(s.interleaved[got*stereoChannels : n*stereoChannels])
			if finished {
				pad := min(n-got, s.tailRemaining)
				s.tailRemaining -= pad
				n = got + pad
				if n == 0 {
					break
				}
			} else {
				s.underruns.Add(1)
			}
		}

		s.render(buf[done*BytesPerFrame:], n)
		done += n
	}

	if done == 0 && total > 0 {
		return 0, io.EOF
	}
	return done * BytesPerFrame, nil
}

// render processes n interleaved frames and encodes them into dst.
func (s *Streamer) render(dst []byte, n int) {
	frames := s.interleaved[:n*stereoChannels]
	left, right := s.left[:n], s.right[:n]

	s.ops.Deinterleave2(left, right, frames)
	s.proc.Process(left, right, left, right)
	s.ops.Interleave2(frames, left, right)

	for i, v := range frames {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(v))
	}
}

// Underruns returns how many reads found the ring short of data.
func (s *Streamer) Underruns() int64 {
	return s.underruns.Load()
}

// Produce feeds the ring from src until it is exhausted or ctx is done.
// It marks sourceDone on return.
func Produce(ctx context.Context, src Source, ring *ringbuf.Buffer, chunkFrames int, sourceDone *atomic.Bool) error {
	defer sourceDone.Store(true)

	ops := simdops.Float32Ops()
	left := make([]float32, chunkFrames)
	right := make([]float32, chunkFrames)
	interleaved := make([]float32, chunkFrames*stereoChannels)

	for {
		n, err := src.ReadStereo(left, right)
		if n > 0 {
			pending := interleaved[:n*stereoChannels]
			ops.Interleave2(pending, left[:n], right[:n])

			for len(pending) > 0 {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				pending = pending[ring.Write(pending):]
				if len(pending) > 0 {
					time.Sleep(producerPoll)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
