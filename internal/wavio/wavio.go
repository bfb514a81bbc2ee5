// Package wavio reads and writes PCM WAV files as planar stereo float32.
//
// Mono input is duplicated to both channels. Output is always stereo PCM at
// the requested bit depth. Samples are normalised to [-1, 1] and clamped on
// the way out.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// Channel count constants
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAVE format tag for integer PCM. IEEE float (3) and extensible
	// headers are rejected.
	formatPCM = 1

	// Frames converted per encoder call
	chunkFrames = 65536
)

var (
	// ErrInvalidFile indicates input that is not a RIFF/WAVE file.
	ErrInvalidFile = errors.New("invalid WAV file")

	// ErrUnsupportedFormat indicates a non-PCM encoding, or a bit depth or
	// channel count that cannot be mapped to stereo PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

// Reader decodes a mono or stereo PCM WAV file.
type Reader struct {
	SampleRate  int
	Channels    int
	BitDepth    int
	TotalFrames int64 // zero if the duration is unknown

	file      *os.File
	decoder   *wav.Decoder
	buf       *audio.IntBuffer
	invMaxVal float32
}

// Open opens and validates a WAV file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	if decoder.WavAudioFormat != formatPCM {
		_ = f.Close()
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, bitDepth)
	}
	if format.NumChannels != monoChannels && format.NumChannels != stereoChannels {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, format.NumChannels)
	}

	var total int64
	if duration, err := decoder.Duration(); err == nil {
		total = int64(duration.Seconds() * float64(format.SampleRate))
	}

	return &Reader{
		SampleRate:  format.SampleRate,
		Channels:    format.NumChannels,
		BitDepth:    bitDepth,
		TotalFrames: total,
		file:        f,
		decoder:     decoder,
		buf: &audio.IntBuffer{
			Data:   make([]int, chunkFrames*format.NumChannels),
			Format: format,
		},
		invMaxVal: float32(1.0 / MaxValue(bitDepth)),
	}, nil
}

// ReadStereo fills left and right with up to min(len(left), len(right))
// frames. It returns the frame count and io.EOF once the data is exhausted.
func (r *Reader) ReadStereo(left, right []float32) (int, error) {
	want := min(len(left), len(right), chunkFrames)
	if want == 0 {
		return 0, nil
	}

	r.buf.Data = r.buf.Data[:want*r.Channels]
	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	frames := n / r.Channels
	if frames == 0 {
		return 0, io.EOF
	}
	return PCMToStereo(r.buf.Data[:frames*r.Channels], r.Channels, left, right, r.invMaxVal), nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Writer encodes planar stereo float32 as PCM WAV.
type Writer struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	maxVal  float64
	frames  int64
}

// Create creates a stereo PCM WAV file.
func Create(path string, sampleRate, bitDepth int) (*Writer, error) {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, bitDepth, stereoChannels, formatPCM),
		buf: &audio.IntBuffer{
			Data:           make([]int, chunkFrames*stereoChannels),
			Format:         &audio.Format{NumChannels: stereoChannels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		maxVal: MaxValue(bitDepth),
	}, nil
}

// WriteStereo converts and writes min(len(left), len(right)) frames.
func (w *Writer) WriteStereo(left, right []float32) error {
	total := min(len(left), len(right))
	for start := 0; start < total; start += chunkFrames {
		end := min(start+chunkFrames, total)
		w.buf.Data = w.buf.Data[:(end-start)*stereoChannels]
		StereoToPCM(left[start:end], right[start:end], w.buf.Data, w.maxVal)
		if err := w.encoder.Write(w.buf); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
		w.frames += int64(end - start)
	}
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 {
	return w.frames
}

// Close finalizes the WAV header and closes the file.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// MaxValue returns the full-scale sample value for the given bit depth.
func MaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// PCMToStereo converts interleaved mono or stereo PCM into planar floats.
// Mono is copied to both channels. Returns the frame count.
func PCMToStereo(data []int, channels int, left, right []float32, invMaxVal float32) int {
	if channels == monoChannels {
		for i, s := range data {
			v := float32(s) * invMaxVal
			left[i], right[i] = v, v
		}
		return len(data)
	}

	frames := len(data) / stereoChannels
	for i := range frames {
		idx := i * stereoChannels
		left[i] = float32(data[idx]) * invMaxVal
		right[i] = float32(data[idx+1]) * invMaxVal
	}
	return frames
}

// StereoToPCM interleaves planar floats into PCM, clamping to [-1, 1].
func StereoToPCM(left, right []float32, dst []int, maxVal float64) {
	for i := range left {
		idx := i * stereoChannels
		dst[idx] = int(clampUnit(float64(left[i])) * maxVal)
		dst[idx+1] = int(clampUnit(float64(right[i])) * maxVal)
	}
}

func clampUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
