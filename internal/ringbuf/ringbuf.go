// Package ringbuf provides a fixed-size sample FIFO for handing audio
// between one producer goroutine and one consumer goroutine without locks.
package ringbuf

import "sync/atomic"

// Buffer is a single-producer single-consumer FIFO of float32 samples.
// Capacity is a power of two so positions wrap with a mask.
//
// Write must only be called from the producer and Read from the consumer.
// Neither allocates or blocks; a full or empty buffer yields a short count.
type Buffer struct {
	data []float32
	mask uint64

	// Free-running positions. writePos is stored only by the producer and
	// readPos only by the consumer.
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

// New creates a buffer holding at least capacity samples.
// Capacity is rounded up to the nearest power of 2.
func New(capacity int) *Buffer {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &Buffer{
		data: make([]float32, cap2),
		mask: uint64(cap2 - 1),
	}
}

// Write copies as many samples as fit and returns the count written.
func (b *Buffer) Write(samples []float32) int {
	w := b.writePos.Load()
	r := b.readPos.Load()

	free := uint64(len(b.data)) - (w - r)
	n := min(uint64(len(samples)), free)
	if n == 0 {
		return 0
	}

	start := w & b.mask
	first := min(n, uint64(len(b.data))-start)
	copy(b.data[start:start+first], samples[:first])
	copy(b.data[:n-first], samples[first:n])

	b.writePos.Store(w + n)
	return int(n)
}

// Read fills dst with up to len(dst) samples and returns the count read.
func (b *Buffer) Read(dst []float32) int {
	r := b.readPos.Load()
	w := b.writePos.Load()

	n := min(uint64(len(dst)), w-r)
	if n == 0 {
		return 0
	}

	start := r & b.mask
	first := min(n, uint64(len(b.data))-start)
	copy(dst[:first], b.data[start:start+first])
	copy(dst[first:n], b.data[:n-first])

	b.readPos.Store(r + n)
	return int(n)
}

// Available returns the number of samples ready to read.
func (b *Buffer) Available() int {
	return int(b.writePos.Load() - b.readPos.Load())
}

// Space returns the number of samples that can be written.
func (b *Buffer) Space() int {
	return len(b.data) - b.Available()
}

// Capacity returns the buffer size in samples.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Reset discards all buffered samples. It must not run concurrently with
// Read or Write.
func (b *Buffer) Reset() {
	b.readPos.Store(0)
	b.writePos.Store(0)
}
