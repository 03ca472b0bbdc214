// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lut builds and serves the two precomputed lookup tables used by
// the SMAA blending-weight pass.
//
// The area table stores analytic coverage areas for every edge pattern the
// pass can encounter, keyed by the pattern's crossing edges and the
// (compressed) distances to the pattern ends. The search table accelerates
// the edge-end search by telling the walker, for a bilinear-packed pair of
// edge samples, how many texels it may still advance.
//
// Both tables are immutable and shared: generate them once with Default (or
// Generate), or hand in externally produced data through a Provider. Layout
// and dimensions are fixed by the algorithm and are not configurable.
package lut

import (
	"errors"
	"fmt"
	"sync"
)

// Fixed table dimensions. The blending-weight kernel addresses the tables
// with these constants baked into its arithmetic.
const (
	// AreaWidth and AreaHeight are the area table dimensions. The left
	// 80-texel half holds orthogonal patterns, the right half diagonal
	// patterns; vertically the table is 7 stacked 80-row bands, one per
	// subsample offset (band 0 serves single-sample SMAA).
	AreaWidth  = 160
	AreaHeight = 560

	// SearchWidth and SearchHeight are the packed search table dimensions.
	SearchWidth  = 64
	SearchHeight = 16

	// MaxDistance is the longest orthogonal pattern half-length the area
	// table encodes, in compressed (square root) texel units.
	MaxDistance = 16

	// MaxDistanceDiag is the longest diagonal pattern half-length.
	MaxDistanceDiag = 20

	// SubtexSize is the height of one subsample band of the area table.
	SubtexSize = 80

	// searchNativeWidth and searchNativeHeight are the dimensions of the
	// uncropped search grid the packed table is cut from. The lookup math
	// uses the native size for scaling and the packed size for clamping.
	searchNativeWidth  = 66
	searchNativeHeight = 33
)

// Errors reported when adopting externally provided tables.
var (
	ErrAreaSize   = errors.New("lut: area table has wrong size")
	ErrSearchSize = errors.New("lut: search table has wrong size")
)

// Provider supplies lookup tables from an external source, typically an
// asset system that loaded the canonical texture files. Data layout must
// match the generated tables: area as row-major two-channel texels, search
// as row-major single-channel texels.
type Provider interface {
	AreaTable() []float32
	SearchTable() []float32
}

// Tables is an immutable pair of lookup tables. Safe for concurrent use by
// any number of views. Tables is itself a Provider, so a generated pair can
// be handed anywhere externally loaded tables are accepted.
type Tables struct {
	area   []float32 // two channels per texel, AreaWidth x AreaHeight
	search []float32 // one channel per texel, SearchWidth x SearchHeight
}

var _ Provider = (*Tables)(nil)

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the shared, lazily generated table pair. Generation runs
// once per process; subsequent calls are free.
func Default() *Tables {
	defaultOnce.Do(func() {
		defaultTables = Generate()
	})
	return defaultTables
}

// Generate builds both tables procedurally. Prefer Default unless a private
// copy is required.
func Generate() *Tables {
	return &Tables{
		area:   generateArea(),
		search: generateSearch(),
	}
}

// FromProvider adopts externally loaded tables, validating their sizes.
func FromProvider(p Provider) (*Tables, error) {
	area := p.AreaTable()
	if len(area) != AreaWidth*AreaHeight*2 {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrAreaSize, len(area), AreaWidth*AreaHeight*2)
	}
	search := p.SearchTable()
	if len(search) != SearchWidth*SearchHeight {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrSearchSize, len(search), SearchWidth*SearchHeight)
	}
	return &Tables{area: area, search: search}, nil
}

// AreaTable returns the raw area table (two channels per texel, row-major).
func (t *Tables) AreaTable() []float32 { return t.area }

// SearchTable returns the raw search table (one channel per texel, row-major).
func (t *Tables) SearchTable() []float32 { return t.search }

// AreaAt returns the area texel at (x, y) with clamp-to-edge addressing.
func (t *Tables) AreaAt(x, y int) (a1, a2 float32) {
	x = clampInt(x, 0, AreaWidth-1)
	y = clampInt(y, 0, AreaHeight-1)
	i := (y*AreaWidth + x) * 2
	return t.area[i], t.area[i+1]
}

// SampleArea bilinearly samples the area table at a texel-space position:
// integer coordinates address texel centers. Fractional positions occur
// because pattern distances are stored square-root compressed.
func (t *Tables) SampleArea(x, y float32) (a1, a2 float32) {
	x0 := floorInt(x)
	y0 := floorInt(y)
	fx := x - float32(x0)
	fy := y - float32(y0)

	a00, b00 := t.AreaAt(x0, y0)
	a10, b10 := t.AreaAt(x0+1, y0)
	a01, b01 := t.AreaAt(x0, y0+1)
	a11, b11 := t.AreaAt(x0+1, y0+1)

	aTop := a00 + (a10-a00)*fx
	aBot := a01 + (a11-a01)*fx
	bTop := b00 + (b10-b00)*fx
	bBot := b01 + (b11-b01)*fx
	return aTop + (aBot-aTop)*fy, bTop + (bBot-bTop)*fy
}

// SearchAt returns the search texel at (x, y) with clamp-to-edge addressing.
func (t *Tables) SearchAt(x, y int) float32 {
	x = clampInt(x, 0, SearchWidth-1)
	y = clampInt(y, 0, SearchHeight-1)
	return t.search[y*SearchWidth+x]
}

// SearchLength converts the bilinear-packed edge pair that ended an
// orthogonal search into the back-up distance encoding. half selects the
// table half: 0.0 for searches toward negative axis directions (left, up),
// 0.5 for positive (right, down).
func (t *Tables) SearchLength(e1, e2, half float32) float32 {
	// Scale and bias map the packed pair onto texel centers of the native
	// 66x33 grid; the packed table is the native grid cropped to 64x16 and
	// clamp addressing reproduces the cropped regions.
	x := (float32(searchNativeWidth)*0.5-1.0)*e1 + float32(searchNativeWidth)*half + 0.5
	y := (1.0-float32(searchNativeHeight))*e2 + float32(searchNativeHeight) - 0.5
	return t.SearchAt(int(x), int(y))
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

func floorInt(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}
