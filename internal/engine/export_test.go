package engine

// Export internal state for testing.
// This file uses the _test.go suffix so it's only included in test builds.

// Buffers returns the live left and right delay buffers.
func (d *DelayLine) Buffers() (left, right []float32) {
	return d.bufs.left, d.bufs.right
}

// Cursor returns the shared write/read index.
func (d *DelayLine) Cursor() int {
	return d.bufs.index
}

// SetCursor moves the shared write/read index.
func (d *DelayLine) SetCursor(idx int) {
	d.bufs.index = idx
}

// Segment is an exported copy of segment for testing.
type Segment struct {
	Start, Offset, Vector, Tail int
}

// PlanSegments runs the chunker to completion and returns every segment
// together with the final cursor.
func PlanSegments(cursor, loopLen, n, width int) ([]Segment, int) {
	c := newChunker(cursor, loopLen, n, width)
	var out []Segment
	for {
		seg, ok := c.next()
		if !ok {
			break
		}
		out = append(out, Segment{Start: seg.start, Offset: seg.offset, Vector: seg.vector, Tail: seg.tail})
	}
	return out, c.cursor
}
