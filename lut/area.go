// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lut

import (
	"math"

	"github.com/gogpu/antialias/internal/parallel"
)

// Subsample offsets for the stacked area table bands. Band 0 (offset zero)
// serves single-sample operation; the remaining bands exist for temporal
// multisampling modes that index the table by subsample position.
var (
	subsampleOffsetsOrtho = [7]float64{0.0, -0.25, 0.25, -0.125, 0.125, -0.375, 0.375}

	subsampleOffsetsDiag = [5][2]float64{
		{0.00, 0.00},
		{0.25, -0.25},
		{-0.25, 0.25},
		{0.125, -0.125},
		{-0.125, 0.125},
	}
)

const (
	// smoothMaxDistance bounds the distance over which small u-shapes are
	// smoothed toward their unfiltered area.
	smoothMaxDistance = 32

	// samplesDiag is the per-axis sample count for the brute force coverage
	// integration of diagonal patterns.
	samplesDiag = 30

	areaOrthoSize = MaxDistance
	areaDiagSize  = MaxDistanceDiag
)

// generateArea builds the full area table: orthogonal patterns in the left
// half, diagonal patterns in the right half, one 80-row band per subsample
// offset. Texel channels hold the coverage areas of the pixel pair the
// pattern revectorization crosses.
func generateArea() []float32 {
	tab := make([]float32, AreaWidth*AreaHeight*2)
	put := func(x, y int, a1, a2 float64) {
		i := (y*AreaWidth + x) * 2
		tab[i] = float32(a1)
		tab[i+1] = float32(a2)
	}

	// Every (band, pattern) pair fills its own block of the texture, so the
	// blocks generate concurrently.
	work := make([]func(), 0,
		16*(len(subsampleOffsetsOrtho)+len(subsampleOffsetsDiag)))

	for band, offset := range subsampleOffsetsOrtho {
		baseY := band * SubtexSize
		for pattern := 0; pattern < 16; pattern++ {
			// Block position within the 5x5 pattern grid. Crossing edge
			// bits map to grid coordinates 0, 1, 3 or 4; coordinate 2 is
			// unused, which keeps unrelated blocks from bleeding into each
			// other under bilinear sampling.
			e1 := 3*(pattern&1) + (pattern>>2)&1
			e2 := 3*((pattern>>1)&1) + (pattern>>3)&1
			pat, off := pattern, offset
			work = append(work, func() {
				for y := 0; y < areaOrthoSize; y++ {
					for x := 0; x < areaOrthoSize; x++ {
						// Distances are stored square root compressed: texel
						// (x, y) encodes the pattern with end distances x^2
						// and y^2.
						a1, a2 := areaOrtho(pat, float64(x*x), float64(y*y), off)
						put(e1*areaOrthoSize+x, baseY+e2*areaOrthoSize+y, a1, a2)
					}
				}
			})
		}
	}

	for band, offset := range subsampleOffsetsDiag {
		baseY := band * SubtexSize
		for pattern := 0; pattern < 16; pattern++ {
			e1 := (pattern & 1) + 2*((pattern>>2)&1)
			e2 := 2*((pattern>>1)&1) + (pattern>>3)&1
			pat, off := pattern, offset
			work = append(work, func() {
				for y := 0; y < areaDiagSize; y++ {
					for x := 0; x < areaDiagSize; x++ {
						a1, a2 := areaDiagPattern(pat, float64(x), float64(y), off)
						put(AreaWidth/2+e1*areaDiagSize+x, baseY+e2*areaDiagSize+y, a1, a2)
					}
				}
			})
		}
	}

	parallel.Default().ExecuteAll(work)
	return tab
}

// area computes the signed coverage the line p1->p2 leaves on the pixel
// [x, x+1]. The first return value is the area below the axis, the second
// the area above; at most one of them is nonzero unless the line crosses
// the axis inside the pixel.
func area(p1x, p1y, p2x, p2y, x float64) (float64, float64) {
	dx := p2x - p1x
	dy := p2y - p1y
	x1 := x
	x2 := x + 1.0
	y1 := p1y + dy*(x1-p1x)/dx
	y2 := p1y + dy*(x2-p1x)/dx

	inside := (x1 >= p1x && x1 < p2x) || (x2 > p1x && x2 <= p2x)
	if !inside {
		return 0.0, 0.0
	}

	sameSign := math.Signbit(y1) == math.Signbit(y2)
	if sameSign || math.Abs(y1) < 1e-4 || math.Abs(y2) < 1e-4 {
		a := (y1 + y2) / 2.0
		if a < 0.0 {
			return math.Abs(a), 0.0
		}
		return 0.0, math.Abs(a)
	}

	// The line crosses the axis inside the pixel, leaving two triangles.
	cx := -p1y*dx/dy + p1x
	var a1, a2 float64
	if cx > p1x {
		a1 = y1 * (cx - math.Floor(cx)) / 2.0
	}
	if cx < p2x {
		a2 = y2 * (math.Ceil(cx) - cx) / 2.0
	}
	a := -a2
	if math.Abs(a1) > math.Abs(a2) {
		a = a1
	}
	if a < 0.0 {
		return math.Abs(a1), math.Abs(a2)
	}
	return math.Abs(a2), math.Abs(a1)
}

// smoothArea eases the area of short u-shapes toward a softer curve so they
// do not pop against neighboring patterns.
func smoothArea(d, a1, a2 float64) (float64, float64) {
	b1 := math.Sqrt(a1*2.0) * 0.5
	b2 := math.Sqrt(a2*2.0) * 0.5
	p := saturate64(d / smoothMaxDistance)
	return b1 + (a1-b1)*p, b2 + (a2-b2)*p
}

// areaOrtho computes the two coverage areas for an orthogonal pattern with
// the given end distances and subsample offset. left and right arrive
// decompressed (already squared).
func areaOrtho(pattern int, left, right, offset float64) (float64, float64) {
	// o1 and o2 are the vertical positions a revectorized line takes at a
	// crossing edge above respectively below the pattern axis.
	o1 := 0.5 + offset
	o2 := 0.5 + offset - 1.0
	d := left + right + 1.0

	switch pattern {
	case 0:
		//
		//    ------
		//
		return 0.0, 0.0

	case 1:
		//
		//   .------
		//   |
		//
		// L patterns are only offset on the crossing edge side so they
		// converge with the unfiltered pattern 0.
		if left <= right {
			return area(0.0, o2, d/2.0, 0.0, left)
		}
		return 0.0, 0.0

	case 2:
		//
		//   ------.
		//         |
		if left >= right {
			return area(d/2.0, 0.0, d, o2, left)
		}
		return 0.0, 0.0

	case 3:
		//
		//   .------.
		//   |      |
		a1, a2 := area(0.0, o2, d/2.0, 0.0, left)
		b1, b2 := area(d/2.0, 0.0, d, o2, left)
		a1, a2 = smoothArea(d, a1, a2)
		b1, b2 = smoothArea(d, b1, b2)
		return a1 + b1, a2 + b2

	case 4:
		//   |
		//   `------
		//
		if left <= right {
			return area(0.0, o1, d/2.0, 0.0, left)
		}
		return 0.0, 0.0

	case 5:
		//   |
		//   +------
		//   |
		return 0.0, 0.0

	case 6:
		//   |
		//   `------.
		//          |
		//
		// Pixels near the center of a Z pattern can detect the full shape
		// while pixels at the sides only see an L. Blending the offset Z
		// with the two L halves hides the discontinuity.
		if math.Abs(offset) > 0.0 {
			a1, a2 := area(0.0, o1, d, o2, left)
			b1, b2 := area(0.0, o1, d/2.0, 0.0, left)
			c1, c2 := area(d/2.0, 0.0, d, o2, left)
			return (a1 + b1 + c1) / 2.0, (a2 + b2 + c2) / 2.0
		}
		return area(0.0, o1, d, o2, left)

	case 7:
		//   |
		//   +------.
		//   |      |
		return area(0.0, o1, d, o2, left)

	case 8:
		//          |
		//   ------´
		//
		if left >= right {
			return area(d/2.0, 0.0, d, o1, left)
		}
		return 0.0, 0.0

	case 9:
		//          |
		//   .-----´
		//   |
		if math.Abs(offset) > 0.0 {
			a1, a2 := area(0.0, o2, d, o1, left)
			b1, b2 := area(0.0, o2, d/2.0, 0.0, left)
			c1, c2 := area(d/2.0, 0.0, d, o1, left)
			return (a1 + b1 + c1) / 2.0, (a2 + b2 + c2) / 2.0
		}
		return area(0.0, o2, d, o1, left)

	case 10:
		//          |
		//   ------+
		//         |
		return 0.0, 0.0

	case 11:
		//          |
		//   .-----+
		//   |     |
		return area(0.0, o2, d, o1, left)

	case 12:
		//   |      |
		//   `-----´
		//
		a1, a2 := area(0.0, o1, d/2.0, 0.0, left)
		b1, b2 := area(d/2.0, 0.0, d, o1, left)
		a1, a2 = smoothArea(d, a1, a2)
		b1, b2 = smoothArea(d, b1, b2)
		return a1 + b1, a2 + b2

	case 13:
		//   |      |
		//   +-----´
		//   |
		return area(0.0, o2, d, o1, left)

	case 14:
		//   |      |
		//   `-----+
		//          |
		return area(0.0, o1, d, o2, left)

	default: // 15
		//   |      |
		//   +-----+
		//   |      |
		return 0.0, 0.0
	}
}

// areaDiag1 integrates, by point sampling, how much of the unit pixel at p
// lies on the positive side of the line p1->p2.
func areaDiag1(p1x, p1y, p2x, p2y, px, py float64) float64 {
	dx := p2x - p1x
	dy := p2y - p1y
	covered := 0
	for x := 0; x < samplesDiag; x++ {
		ox := float64(x) / float64(samplesDiag-1)
		for y := 0; y < samplesDiag; y++ {
			oy := float64(y) / float64(samplesDiag-1)
			if dx == 0.0 {
				covered++
				continue
			}
			sx := px + ox
			sy := py + oy
			if dy*(sx-p1x)-dx*(sy-p1y) > 0.0 {
				covered++
			}
		}
	}
	return float64(covered) / float64(samplesDiag*samplesDiag)
}

// areaDiag evaluates the pixel pair a diagonal pattern crosses at distance
// left along the diagonal, with the line displaced by the subsample offset.
func areaDiag(p1x, p1y, p2x, p2y, left float64, offset [2]float64) (float64, float64) {
	p1x += offset[0]
	p1y += offset[1]
	p2x += offset[0]
	p2y += offset[1]
	a1 := areaDiag1(p1x, p1y, p2x, p2y, 1.0+left, 0.0+left)
	a2 := areaDiag1(p1x, p1y, p2x, p2y, 1.0+left, 1.0+left)
	return a1, a2
}

// areaDiagPattern computes the two coverage areas for a diagonal pattern.
// Unlike the orthogonal case the null pattern must be filtered too, and the
// ends of null and L patterns are ambiguous, so ambiguous patterns blend
// both possible interpretations.
func areaDiagPattern(pattern int, left, right float64, offset [2]float64) (float64, float64) {
	d := left + right + 1.0

	blend := func(a1, a2, b1, b2 float64) (float64, float64) {
		return (a1 + b1) / 2.0, (a2 + b2) / 2.0
	}

	switch pattern {
	case 0:
		//
		//         .-´
		//       .-´
		//     .-´
		//   .-´
		//   ´
		//
		a1, a2 := areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 1:
		//
		//         .-´
		//       .-´
		//     .-´
		//   .-´
		//   |
		//
		a1, a2 := areaDiag(1.0, 0.0, 0.0+d, 0.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 2:
		//
		//         .----
		//       .-´
		//     .-´
		//   .-´
		//   ´
		//
		a1, a2 := areaDiag(0.0, 0.0, 1.0+d, 0.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 3:
		//
		//         .----
		//       .-´
		//     .-´
		//   .-´
		//   |
		//
		return areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)

	case 4:
		//         .-´
		//       .-´
		//     .-´
		// ----´
		//
		a1, a2 := areaDiag(1.0, 1.0, 0.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 5:
		//         .-´
		//       .-´
		//     .-´
		// --.-´
		//   |
		a1, a2 := areaDiag(1.0, 1.0, 0.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 6:
		//         .----
		//       .-´
		//     .-´
		// ----´
		//
		return areaDiag(1.0, 1.0, 1.0+d, 0.0+d, left, offset)

	case 7:
		//         .----
		//       .-´
		//     .-´
		// --.-´
		//   |
		a1, a2 := areaDiag(1.0, 1.0, 1.0+d, 0.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 8:
		//           |
		//         .-´
		//       .-´
		//     .-´
		//   .-´
		//   ´
		a1, a2 := areaDiag(0.0, 0.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 1.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 9:
		//           |
		//         .-´
		//       .-´
		//     .-´
		//   .-´
		//   |
		return areaDiag(1.0, 0.0, 1.0+d, 1.0+d, left, offset)

	case 10:
		//           |
		//         .----
		//       .-´
		//     .-´
		//   .-´
		//   ´
		a1, a2 := areaDiag(0.0, 0.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 11:
		//           |
		//         .----
		//       .-´
		//     .-´
		//   .-´
		//   |
		a1, a2 := areaDiag(1.0, 0.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 12:
		//           |
		//         .-´
		//       .-´
		//     .-´
		// ----´
		return areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)

	case 13:
		//           |
		//         .-´
		//       .-´
		//     .-´
		// --.-´
		//   |
		a1, a2 := areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 1.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	case 14:
		//           |
		//         .----
		//       .-´
		//     .-´
		// ----´
		a1, a2 := areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 1.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)

	default: // 15
		//           |
		//         .----
		//       .-´
		//     .-´
		// --.-´
		//   |
		a1, a2 := areaDiag(1.0, 1.0, 1.0+d, 1.0+d, left, offset)
		b1, b2 := areaDiag(1.0, 0.0, 1.0+d, 0.0+d, left, offset)
		return blend(a1, a2, b1, b2)
	}
}

func saturate64(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
