// Command echo-play plays audio through the echo in real time.
//
// Usage:
//
//	echo-play -delay 0.3 -feedback 0.6 music.wav
//	echo-play -click 1 -delay 0.25      # Click train, no input file
//	echo-play -i music.wav              # Read "<param> <value>" lines from stdin
//
// The audio device pulls float32 frames from a reader that runs the
// processor on its own goroutine. A producer goroutine decodes the source
// into a lock-free ring ahead of it. CPU load and buffer state are logged
// once per second.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"

	echo "github.com/tphakala/go-audio-echo"
	"github.com/tphakala/go-audio-echo/internal/playback"
	"github.com/tphakala/go-audio-echo/internal/ringbuf"
	"github.com/tphakala/go-audio-echo/internal/wavio"
	"golang.org/x/term"
)

const (
	stereoChannels   = 2
	defaultClickRate = 48000.0
	reportInterval   = time.Second
	percentScale     = 100
	millisPerSecond  = 1000
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := echo.DefaultParamValues()

	delay := flag.Float64("delay", defaults.DelaySeconds, "Delay time in seconds (0.001-5)")
	feedback := flag.Float64("feedback", float64(defaults.Feedback), "Feedback amount (0-0.99)")
	wet := flag.Float64("wet", float64(defaults.WetMix), "Wet (echo) gain (0-1)")
	dry := flag.Float64("dry", float64(defaults.DryMix), "Dry (direct) gain (0-1)")
	scalar := flag.Bool("scalar", false, "Use the scalar reference path")
	block := flag.Int("block", echo.DefaultBlockSize, "Frames processed per block")
	latency := flag.Duration("latency", 50*time.Millisecond, "Device buffer length")
	ahead := flag.Duration("buffer", 500*time.Millisecond, "Decode-ahead ring length")
	click := flag.Float64("click", 0, "Play a click train with this interval in seconds instead of a file")
	duration := flag.Float64("duration", 10, "Click train length in seconds (0 for endless)")
	interactive := flag.Bool("i", false, "Read \"<param> <value>\" commands from stdin")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *block < 1 {
		return fmt.Errorf("block size must be positive, got %d", *block)
	}

	src, rate, closeSrc, err := openSource(flag.Args(), *click, *duration)
	if err != nil {
		return err
	}
	defer closeSrc()

	params := echo.ParamValues{
		DelaySeconds: *delay,
		Feedback:     float32(*feedback),
		WetMix:       float32(*wet),
		DryMix:       float32(*dry),
		Vectorized:   !*scalar,
	}
	p, err := echo.New(&echo.Config{SampleRate: rate, Params: &params})
	if err != nil {
		return err
	}

	if *verbose {
		info := p.Info()
		log.Printf("Sample rate: %.0f Hz, block %d frames", rate, *block)
		log.Printf("Engine: %d-sample buffer, vector width %d, %s",
			info.MaxDelaySamples, info.VectorWidth, info.SIMDInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Producer
	ringFrames := max(int(ahead.Seconds()*rate), *block)
	ring := ringbuf.New(ringFrames * stereoChannels)
	var sourceDone atomic.Bool
	errCh := make(chan error, 1)
	go func() {
		errCh <- playback.Produce(ctx, src, ring, *block, &sourceDone)
	}()

	// Device
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(rate),
		ChannelCount: stereoChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   *latency,
	})
	if err != nil {
		return fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	tailFrames := int(math.Round(p.TailSeconds() * rate))
	st := playback.NewStreamer(p, ring, *block, tailFrames, &sourceDone)
	player := otoCtx.NewPlayer(st)
	defer func() { _ = player.Close() }()
	player.Play()

	if *interactive {
		go playback.ReadCommands(ctx, os.Stdin, p.Params(), log.Printf)
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Printf("Commands: <param> <value> | show")
		}
	}

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("source: %w", err)
			}
			errCh = nil
		case <-ticker.C:
			if !player.IsPlaying() {
				return player.Err()
			}
			bufferedMs := float64(ring.Available()/stereoChannels) / rate * millisPerSecond
			log.Printf("CPU load: %.1f%%, buffered: %.0f ms, underruns: %d",
				p.CPULoad()*percentScale, bufferedMs, st.Underruns())
		}
	}
}

// openSource returns the click train when interval is positive and a WAV
// file otherwise.
func openSource(args []string, interval, duration float64) (playback.Source, float64, func(), error) {
	if interval > 0 {
		return playback.NewClickSource(defaultClickRate, interval, duration), defaultClickRate, func() {}, nil
	}

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n       %s -click <seconds> [options]\n\n", os.Args[0], os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return nil, 0, nil, errors.New("no input")
	}

	r, err := wavio.Open(args[0])
	if err != nil {
		return nil, 0, nil, err
	}
	return r, float64(r.SampleRate), func() { _ = r.Close() }, nil
}
