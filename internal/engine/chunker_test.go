package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunker_Plans(t *testing.T) {
	testCases := []struct {
		name       string
		cursor     int
		loopLen    int
		n          int
		width      int
		want       []Segment
		wantCursor int
	}{
		{
			name: "wraps_twice", cursor: 0, loopLen: 20, n: 50, width: 8,
			want: []Segment{
				{Start: 0, Offset: 0, Vector: 16, Tail: 4},
				{Start: 0, Offset: 20, Vector: 16, Tail: 4},
				{Start: 0, Offset: 40, Vector: 8, Tail: 2},
			},
			wantCursor: 10,
		},
		{
			name: "short_tail_then_wrap", cursor: 5, loopLen: 7, n: 3, width: 4,
			want: []Segment{
				{Start: 5, Offset: 0, Vector: 0, Tail: 2},
				{Start: 0, Offset: 2, Vector: 0, Tail: 1},
			},
			wantCursor: 1,
		},
		{
			name: "ends_on_edge", cursor: 8, loopLen: 16, n: 8, width: 8,
			want: []Segment{
				{Start: 8, Offset: 0, Vector: 8, Tail: 0},
			},
			wantCursor: 0,
		},
		{
			name: "cursor_beyond_shortened_loop", cursor: 10, loopLen: 4, n: 3, width: 4,
			want: []Segment{
				{Start: 10, Offset: 0, Vector: 0, Tail: 1},
				{Start: 0, Offset: 1, Vector: 0, Tail: 2},
			},
			wantCursor: 2,
		},
		{
			name: "empty_block", cursor: 3, loopLen: 9, n: 0, width: 8,
			want: nil, wantCursor: 3,
		},
		{
			name: "width_one_is_all_vector", cursor: 0, loopLen: 5, n: 7, width: 1,
			want: []Segment{
				{Start: 0, Offset: 0, Vector: 5, Tail: 0},
				{Start: 0, Offset: 5, Vector: 2, Tail: 0},
			},
			wantCursor: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, cursor := PlanSegments(tc.cursor, tc.loopLen, tc.n, tc.width)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantCursor, cursor)
		})
	}
}

// TestChunker_Invariants checks the plan shape over a grid of inputs.
func TestChunker_Invariants(t *testing.T) {
	for _, width := range []int{1, 4, 8, 16} {
		for _, loopLen := range []int{1, 2, 7, 8, 33, 100} {
			for _, n := range []int{0, 1, 5, 8, 64, 257} {
				for _, cursor := range []int{0, loopLen / 2, loopLen - 1} {
					name := fmt.Sprintf("w%d/loop%d/n%d/cursor%d", width, loopLen, n, cursor)
					t.Run(name, func(t *testing.T) {
						segs, final := PlanSegments(cursor, loopLen, n, width)

						total := 0
						pos := cursor
						for i, s := range segs {
							assert.Equal(t, total, s.Offset, "segment %d offset", i)
							assert.Equal(t, pos, s.Start, "segment %d start", i)
							assert.Zero(t, s.Vector%width, "segment %d vector run", i)
							assert.Less(t, s.Tail, width, "segment %d tail", i)
							assert.LessOrEqual(t, s.Start+s.Vector+s.Tail, loopLen, "segment %d crosses the edge", i)

							total += s.Vector + s.Tail
							pos = s.Start + s.Vector + s.Tail
							if pos >= loopLen {
								pos = 0
							}
						}
						assert.Equal(t, n, total)
						assert.Equal(t, pos, final)
						assert.Equal(t, (cursor+n)%loopLen, final)
					})
				}
			}
		}
	}
}
