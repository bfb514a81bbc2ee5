// Command echo-wav applies the stereo echo to a WAV file.
//
// Usage:
//
//	echo-wav -delay 0.375 -feedback 0.5 input.wav output.wav
//	echo-wav -delay 1 -wet 0.7 -dry 0.8 -tail 4 input.wav output.wav
//	echo-wav -scalar -block 64 input.wav output.wav     # Reference path, host-sized blocks
//
// Mono input is duplicated to both channels. The output keeps the input
// sample rate and bit depth and is always stereo.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	echo "github.com/tphakala/go-audio-echo"
	"github.com/tphakala/go-audio-echo/internal/wavio"
	"golang.org/x/term"
)

const (
	// Frames read from the decoder per chunk
	bufferSize = 65536

	stereoChannels = 2

	progressInterval = 10 // Print progress every N%
	percentScale     = 100
	bytesPerKilobyte = 1024

	minRequiredArgs = 2
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
	tail := flag.Float64("tail", 0, "Seconds of silence appended so echoes can ring out")
	block := flag.Int("block", echo.DefaultBlockSize, "Frames per processing block")
	scalar := flag.Bool("scalar", false, "Use the scalar reference path")
	width := flag.Int("vector", 0, "Vector width of the vectorized path (power of two, 0 for default)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -delay 0.375 -feedback 0.5 in.wav out.wav  # Dotted eighth at 120 BPM\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -delay 0.08 -feedback 0 -wet 0.6 in.wav out.wav # Slapback\n", os.Args[0])
		return errors.New("insufficient arguments")
	}

	if *block < 1 {
		return fmt.Errorf("block size must be positive, got %d", *block)
	}
	if *tail < 0 {
		return fmt.Errorf("tail must be non-negative, got %v", *tail)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := echoOptions{
		params: echo.ParamValues{
			DelaySeconds: *delay,
			Feedback:     float32(*feedback),
			WetMix:       float32(*wet),
			DryMix:       float32(*dry),
			Vectorized:   !*scalar,
		},
		tailSeconds: *tail,
		blockSize:   *block,
		vectorWidth: *width,
		verbose:     *verbose,
		progress:    *verbose && term.IsTerminal(int(os.Stderr.Fd())),
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Delay: %.3fs, feedback %.2f, wet %.2f, dry %.2f",
			*delay, *feedback, *wet, *dry)
		if *scalar {
			log.Printf("Path: scalar")
		} else {
			log.Printf("Path: vectorized")
		}
	}

	start := time.Now()
	stats, err := echoWAV(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Processed %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d -> %d channels, %d-bit\n",
		stats.rate, stats.inputChannels, stereoChannels, stats.bitDepth)
	fmt.Printf("  %d frames in, %d frames out (%d tail)\n",
		stats.inputFrames, stats.outputFrames, stats.outputFrames-stats.inputFrames)
	fmt.Printf("  Delay: %d samples, CPU load: %.1f%%\n",
		stats.delaySamples, stats.cpuLoad*percentScale)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.outputFrames)/float64(stats.rate)/elapsed.Seconds())

	return nil
}

// echoOptions carries the processing settings from the command line.
type echoOptions struct {
	params      echo.ParamValues
	tailSeconds float64
	blockSize   int
	vectorWidth int
	verbose     bool
	progress    bool // log percentage steps; only useful on a terminal
}

type echoStats struct {
	rate          int
	inputChannels int
	bitDepth      int
	inputFrames   int64
	outputFrames  int64
	delaySamples  int
	cpuLoad       float32
}

func echoWAV(inputPath, outputPath string, opts echoOptions) (stats *echoStats, err error) {
	// 1. Open and validate input
	input, err := wavio.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	if opts.verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", input.SampleRate, input.Channels, input.BitDepth)
	}

	// 2. Create the processor
	p, err := echo.New(&echo.Config{
		SampleRate:  float64(input.SampleRate),
		VectorWidth: opts.vectorWidth,
		Params:      &opts.params,
	})
	if err != nil {
		return nil, err
	}

	// 3. Create output writer
	output, err := wavio.Create(outputPath, input.SampleRate, input.BitDepth)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (the encoder writes sizes on close)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Initialize processing buffers and tracking
	left := make([]float32, bufferSize)
	right := make([]float32, bufferSize)
	stats = &echoStats{
		rate:          input.SampleRate,
		inputChannels: input.Channels,
		bitDepth:      input.BitDepth,
	}
	progress := newProgressTracker(input.TotalFrames, opts.progress)

	// 5. Main processing loop
	for {
		frames, err := input.ReadStereo(left, right)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		stats.inputFrames += int64(frames)
		processBlocks(p, left[:frames], right[:frames], opts.blockSize)

		if err := output.WriteStereo(left[:frames], right[:frames]); err != nil {
			return nil, err
		}
		progress.reportIfNeeded(stats.inputFrames)
	}

	// 6. Ring out the tail
	tailFrames := int64(math.Round(opts.tailSeconds * float64(input.SampleRate)))
	for tailFrames > 0 {
		frames := int(min(tailFrames, int64(bufferSize)))
		clear(left[:frames])
		clear(right[:frames])

		processBlocks(p, left[:frames], right[:frames], opts.blockSize)

		if err := output.WriteStereo(left[:frames], right[:frames]); err != nil {
			return nil, fmt.Errorf("failed to write tail: %w", err)
		}
		tailFrames -= int64(frames)
	}

	stats.outputFrames = output.Frames()
	stats.delaySamples = p.Info().DelaySamples
	stats.cpuLoad = p.CPULoad()

	if opts.verbose {
		info := p.Info()
		log.Printf("Engine: %d-sample buffer, vector width %d, %.1f KB, %s",
			info.MaxDelaySamples, info.VectorWidth, float64(info.MemoryUsage)/bytesPerKilobyte, info.SIMDInfo)
	}

	return stats, nil
}
