// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame provides the CPU-side pixel buffers consumed and produced by
// the anti-aliasing passes: color (RGBA), depth (single channel) and motion
// vectors (two channels), all stored as float32 planes.
//
// Buffers are plain row-major slices with texel access helpers. Sampling
// follows GPU conventions: UV coordinates place texel centers at
// ((x+0.5)/width, (y+0.5)/height) with the Y axis pointing down, and all
// out-of-range reads clamp to the edge. This keeps the per-pixel kernels in
// the smaa and taa packages bit-comparable with their shader counterparts.
package frame

import (
	"errors"

	"golang.org/x/image/math/f32"
)

// ErrExtentMismatch is returned when an operation requires two buffers of the
// same resolution and they differ.
var ErrExtentMismatch = errors.New("frame: extent mismatch")

// Extent is a buffer resolution in pixels.
type Extent struct {
	Width  int
	Height int
}

// IsZero reports whether either dimension is zero or negative.
func (e Extent) IsZero() bool {
	return e.Width <= 0 || e.Height <= 0
}

// Pixels returns the total pixel count.
func (e Extent) Pixels() int {
	return e.Width * e.Height
}

// ColorBuffer is an RGBA float32 pixel buffer.
//
// The SMAA passes also use ColorBuffer for their intermediate products: the
// edge mask uses the R and G channels, the blending weights use all four.
type ColorBuffer struct {
	width  int
	height int
	pix    []float32 // RGBA, 4 floats per pixel
}

// NewColorBuffer creates a zeroed color buffer with the given dimensions.
func NewColorBuffer(width, height int) *ColorBuffer {
	return &ColorBuffer{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// Width returns the buffer width in pixels.
func (b *ColorBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *ColorBuffer) Height() int { return b.height }

// Extent returns the buffer resolution.
func (b *ColorBuffer) Extent() Extent {
	return Extent{Width: b.width, Height: b.height}
}

// Pix returns the raw pixel storage (RGBA, 4 floats per pixel, row-major).
func (b *ColorBuffer) Pix() []float32 { return b.pix }

// At returns the texel at (x, y). Coordinates outside the buffer clamp to the
// nearest edge texel.
func (b *ColorBuffer) At(x, y int) f32.Vec4 {
	x = clampInt(x, 0, b.width-1)
	y = clampInt(y, 0, b.height-1)
	i := (y*b.width + x) * 4
	return f32.Vec4{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// Set stores the texel at (x, y). Out-of-range coordinates are ignored.
func (b *ColorBuffer) Set(x, y int, c f32.Vec4) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i] = c[0]
	b.pix[i+1] = c[1]
	b.pix[i+2] = c[2]
	b.pix[i+3] = c[3]
}

// SampleUV bilinearly samples the buffer at normalized (u, v) with
// clamp-to-edge addressing. Texel centers sit at (x+0.5)/width.
func (b *ColorBuffer) SampleUV(u, v float32) f32.Vec4 {
	fx := u*float32(b.width) - 0.5
	fy := v*float32(b.height) - 0.5
	x0 := floorInt(fx)
	y0 := floorInt(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := b.At(x0, y0)
	c10 := b.At(x0+1, y0)
	c01 := b.At(x0, y0+1)
	c11 := b.At(x0+1, y0+1)

	var out f32.Vec4
	for i := 0; i < 4; i++ {
		top := c00[i] + (c10[i]-c00[i])*tx
		bot := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

// Clear fills every texel with c.
func (b *ColorBuffer) Clear(c f32.Vec4) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = c[0]
		b.pix[i+1] = c[1]
		b.pix[i+2] = c[2]
		b.pix[i+3] = c[3]
	}
}

// CopyFrom copies src into b. The extents must match.
func (b *ColorBuffer) CopyFrom(src *ColorBuffer) error {
	if b.width != src.width || b.height != src.height {
		return ErrExtentMismatch
	}
	copy(b.pix, src.pix)
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *ColorBuffer) Clone() *ColorBuffer {
	out := NewColorBuffer(b.width, b.height)
	copy(out.pix, b.pix)
	return out
}

// DepthBuffer is a single-channel float32 depth plane. Depth follows the
// reverse-Z convention used by the renderer: larger values are closer.
type DepthBuffer struct {
	width  int
	height int
	pix    []float32
}

// NewDepthBuffer creates a zeroed depth buffer with the given dimensions.
func NewDepthBuffer(width, height int) *DepthBuffer {
	return &DepthBuffer{
		width:  width,
		height: height,
		pix:    make([]float32, width*height),
	}
}

// Width returns the buffer width in pixels.
func (b *DepthBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *DepthBuffer) Height() int { return b.height }

// Extent returns the buffer resolution.
func (b *DepthBuffer) Extent() Extent {
	return Extent{Width: b.width, Height: b.height}
}

// Pix returns the raw depth storage.
func (b *DepthBuffer) Pix() []float32 { return b.pix }

// At returns the depth at (x, y) with clamp-to-edge addressing.
func (b *DepthBuffer) At(x, y int) float32 {
	x = clampInt(x, 0, b.width-1)
	y = clampInt(y, 0, b.height-1)
	return b.pix[y*b.width+x]
}

// Set stores the depth at (x, y). Out-of-range coordinates are ignored.
func (b *DepthBuffer) Set(x, y int, d float32) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.pix[y*b.width+x] = d
}

// Fill sets every texel to d.
func (b *DepthBuffer) Fill(d float32) {
	for i := range b.pix {
		b.pix[i] = d
	}
}

// MotionBuffer holds per-pixel motion vectors in UV units: the screen-space
// offset from a surface point's current position back to its position in the
// previous frame, as produced by the external geometry pass.
type MotionBuffer struct {
	width  int
	height int
	pix    []float32 // XY, 2 floats per pixel
}

// NewMotionBuffer creates a zeroed motion buffer with the given dimensions.
func NewMotionBuffer(width, height int) *MotionBuffer {
	return &MotionBuffer{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*2),
	}
}

// Width returns the buffer width in pixels.
func (b *MotionBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *MotionBuffer) Height() int { return b.height }

// Extent returns the buffer resolution.
func (b *MotionBuffer) Extent() Extent {
	return Extent{Width: b.width, Height: b.height}
}

// Pix returns the raw motion vector storage (XY pairs, row-major).
func (b *MotionBuffer) Pix() []float32 { return b.pix }

// At returns the motion vector at (x, y) with clamp-to-edge addressing.
func (b *MotionBuffer) At(x, y int) f32.Vec2 {
	x = clampInt(x, 0, b.width-1)
	y = clampInt(y, 0, b.height-1)
	i := (y*b.width + x) * 2
	return f32.Vec2{b.pix[i], b.pix[i+1]}
}

// Set stores the motion vector at (x, y). Out-of-range coordinates are ignored.
func (b *MotionBuffer) Set(x, y int, v f32.Vec2) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 2
	b.pix[i] = v[0]
	b.pix[i+1] = v[1]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// floorInt is a fast floor for the coordinate ranges sampling produces.
func floorInt(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}
