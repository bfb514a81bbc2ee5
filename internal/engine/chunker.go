package engine

// segment is one edge-bounded slice of a block. Buffer positions
// [start, start+vector+tail) are contiguous and do not cross the wrap edge.
type segment struct {
	start  int // cursor position of the first sample
	offset int // index of the first sample within the block
	vector int // samples covered by whole vector groups
	tail   int // scalar remainder, always < width
}

// chunker walks a block of n samples in segments that end where the cursor
// would wrap. It performs no modulo per sample: the edge is computed once per
// segment and the cursor is wrapped at most once per segment.
type chunker struct {
	cursor    int
	loopLen   int
	remaining int
	offset    int
	width     int
}

// newChunker starts a walk at cursor over a loop of loopLen samples.
// width must be a power of two.
func newChunker(cursor, loopLen, n, width int) chunker {
	return chunker{
		cursor:    cursor,
		loopLen:   loopLen,
		remaining: n,
		width:     width,
	}
}

// next returns the following segment, or false when the block is exhausted.
func (c *chunker) next() (segment, bool) {
	if c.remaining <= 0 {
		return segment{}, false
	}

	// A cursor left beyond a shortened loop still consumes its current
	// position once before wrapping, exactly as the scalar path does.
	toEdge := max(c.loopLen-c.cursor, 1)
	toEdge = min(toEdge, c.remaining)

	vector := toEdge &^ (c.width - 1)
	seg := segment{
		start:  c.cursor,
		offset: c.offset,
		vector: vector,
		tail:   toEdge - vector,
	}

	c.cursor += toEdge
	if c.cursor >= c.loopLen {
		c.cursor = 0
	}
	c.offset += toEdge
	c.remaining -= toEdge

	return seg, true
}
