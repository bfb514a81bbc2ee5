// Package simdops binds the float32 SIMD kernels used by the echo's block
// path behind a single table of function pointers.
//
// With Profile-Guided Optimization (Go 1.22+), function pointer calls in hot paths
// can be devirtualized and inlined, achieving near-zero overhead.
package simdops

import (
	"github.com/tphakala/simd/f32"
)

// Ops provides SIMD-accelerated element-wise float32 operations.
//
// All slice arguments of one call must have equal length. dst may alias
// any input slice.
type Ops struct {
	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float32, s float32)

	// Add computes the element-wise sum: dst[i] = a[i] + b[i]
	Add func(dst, a, b []float32)

	// Clamp limits each element to [lo, hi]: dst[i] = min(max(a[i], lo), hi)
	Clamp func(dst, a []float32, lo, hi float32)

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []float32)

	// Deinterleave2 splits an interleaved slice: a[i]=src[2i], b[i]=src[2i+1]
	Deinterleave2 func(a, b, src []float32)
}

// Package-level table to avoid repeated allocation.
var ops32 = Ops{
	Scale:         f32.Scale,
	Add:           f32.Add,
	Clamp:         f32.Clamp,
	Interleave2:   f32.Interleave2,
	Deinterleave2: f32.Deinterleave2,
}

// Float32Ops returns the shared float32 SIMD operations.
func Float32Ops() *Ops {
	return &ops32
}
