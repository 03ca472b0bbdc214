// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/internal/parallel"
	"github.com/gogpu/antialias/lut"
)

// ComputeWeights classifies the edge shapes in edges and writes per-pixel
// blending weights into dst. Red and green hold the weights of pixels with a
// top edge (blend with the pixel above respectively below the revectorized
// line), blue and alpha the weights of pixels with a left edge.
//
// The pass searches along edge runs for their ends, identifies the crossing
// edges there, and reads the precomputed coverage area for the resulting
// pattern from the tables. Diagonal patterns take priority over orthogonal
// ones when enabled. dst must not alias edges.
func ComputeWeights(dst, edges *frame.ColorBuffer, tables *lut.Tables, cfg Config) error {
	if dst.Extent() != edges.Extent() {
		return fmt.Errorf("smaa: compute weights: %w: dst %dx%d, edges %dx%d",
			frame.ErrExtentMismatch, dst.Width(), dst.Height(), edges.Width(), edges.Height())
	}

	p := &weightsPass{
		edges:  edges,
		tables: tables,
		cfg:    cfg,
		w:      edges.Width(),
		h:      edges.Height(),
		rtx:    1.0 / float32(edges.Width()),
		rty:    1.0 / float32(edges.Height()),
	}

	// weightsPass is read-only during the loop, so rows can run concurrently.
	parallel.ForRows(p.h, func(y int) {
		for x := 0; x < p.w; x++ {
			e := edges.At(x, y)
			var out f32.Vec4
			if e[0] != 0 || e[1] != 0 {
				out = p.pixel(x, y, e[0], e[1])
			}
			dst.Set(x, y, out)
		}
	})
	return nil
}

// weightsPass carries the per-frame state of one weight computation.
type weightsPass struct {
	edges  *frame.ColorBuffer
	tables *lut.Tables
	cfg    Config

	w, h     int
	rtx, rty float32 // texel size in UV units
}

func (p *weightsPass) pixel(x, y int, eR, eG float32) f32.Vec4 {
	var out f32.Vec4
	u := (float32(x) + 0.5) * p.rtx
	v := (float32(y) + 0.5) * p.rty

	if eG > 0 { // edge at north
		doOrtho := true
		if p.cfg.MaxSearchStepsDiag > 0 {
			// Diagonals carry both north and west edges, so searching from
			// one boundary finds them. A diagonal hit replaces orthogonal
			// processing for this pixel.
			out[0], out[1] = p.diagWeights(u, v, eR)
			if out[0]+out[1] != 0 {
				doOrtho = false
				eR = 0
			}
		}
		if doOrtho {
			px := float32(x) + 0.5

			// The search samples sit between edge rows so one bilinear
			// fetch covers two texel pairs.
			searchV := v - 0.125*p.rty
			leftU := p.searchXLeft(u-0.25*p.rtx, searchV,
				u-0.25*p.rtx-2*float32(p.cfg.MaxSearchSteps)*p.rtx)
			crossV := v - 0.25*p.rty
			e1 := p.edges.SampleUV(leftU, crossV)[0]

			rightU := p.searchXRight(u+1.25*p.rtx, searchV,
				u+1.25*p.rtx+2*float32(p.cfg.MaxSearchSteps)*p.rtx)
			e2 := p.edges.SampleUV(rightU+p.rtx, crossV)[0]

			dLeft := abs32(round32(leftU*float32(p.w) - px))
			dRight := abs32(round32(rightU*float32(p.w) - px))

			// The area table is compressed quadratically along the
			// distance axes.
			out[0], out[1] = p.area(sqrt32(dLeft), sqrt32(dRight), e1, e2)

			p.cornersHorizontal(&out[0], &out[1], leftU, rightU, v, dLeft, dRight)
		}
	}

	if eR > 0 { // edge at west
		py := float32(y) + 0.5

		searchU := u - 0.125*p.rtx
		topV := p.searchYUp(searchU, v-0.25*p.rty,
			v-0.25*p.rty-2*float32(p.cfg.MaxSearchSteps)*p.rty)
		crossU := u - 0.25*p.rtx
		e1 := p.edges.SampleUV(crossU, topV)[1]

		bottomV := p.searchYDown(searchU, v+1.25*p.rty,
			v+1.25*p.rty+2*float32(p.cfg.MaxSearchSteps)*p.rty)
		e2 := p.edges.SampleUV(crossU, bottomV+p.rty)[1]

		dTop := abs32(round32(topV*float32(p.h) - py))
		dBottom := abs32(round32(bottomV*float32(p.h) - py))

		out[2], out[3] = p.area(sqrt32(dTop), sqrt32(dBottom), e1, e2)

		p.cornersVertical(&out[2], &out[3], u, topV, bottomV, dTop, dBottom)
	}

	return out
}

// searchXLeft walks left along a top-edge run and returns the UV x of its
// end. The walk advances two texels per fetch; the search table then tells
// from the final sample pair how far the overstep must be backed out.
func (p *weightsPass) searchXLeft(u, v, end float32) float32 {
	eR, eG := float32(0), float32(1)
	for u > end && eG > 0.8281 && eR == 0 {
		s := p.edges.SampleUV(u, v)
		eR, eG = s[0], s[1]
		u -= 2 * p.rtx
	}
	offset := -(255.0/127.0)*p.tables.SearchLength(eR, eG, 0.0) + 3.25
	return u + offset*p.rtx
}

func (p *weightsPass) searchXRight(u, v, end float32) float32 {
	eR, eG := float32(0), float32(1)
	for u < end && eG > 0.8281 && eR == 0 {
		s := p.edges.SampleUV(u, v)
		eR, eG = s[0], s[1]
		u += 2 * p.rtx
	}
	offset := -(255.0/127.0)*p.tables.SearchLength(eR, eG, 0.5) + 3.25
	return u - offset*p.rtx
}

func (p *weightsPass) searchYUp(u, v, end float32) float32 {
	eR, eG := float32(1), float32(0)
	for v > end && eR > 0.8281 && eG == 0 {
		s := p.edges.SampleUV(u, v)
		eR, eG = s[0], s[1]
		v -= 2 * p.rty
	}
	offset := -(255.0/127.0)*p.tables.SearchLength(eG, eR, 0.0) + 3.25
	return v + offset*p.rty
}

func (p *weightsPass) searchYDown(u, v, end float32) float32 {
	eR, eG := float32(1), float32(0)
	for v < end && eR > 0.8281 && eG == 0 {
		s := p.edges.SampleUV(u, v)
		eR, eG = s[0], s[1]
		v += 2 * p.rty
	}
	offset := -(255.0/127.0)*p.tables.SearchLength(eG, eR, 0.5) + 3.25
	return v - offset*p.rty
}

// area reads the orthogonal pattern coverage. e1 and e2 are the packed
// crossing edge fetches at the two pattern ends; rounding to the block grid
// guards against bilinear precision drift.
func (p *weightsPass) area(sqrtD1, sqrtD2, e1, e2 float32) (float32, float32) {
	x := float32(lut.MaxDistance)*round32(4*e1) + sqrtD1
	y := float32(lut.MaxDistance)*round32(4*e2) + sqrtD2
	return p.tables.SampleArea(x, y)
}

// areaDiag reads the diagonal pattern coverage keyed by the merged crossing
// edge codes cc1 and cc2.
func (p *weightsPass) areaDiag(d1, d2, cc1, cc2 float32) (float32, float32) {
	x := float32(lut.MaxDistanceDiag)*cc1 + d1 + float32(lut.AreaWidth)/2
	y := float32(lut.MaxDistanceDiag)*cc2 + d2
	return p.tables.SampleArea(x, y)
}

// searchDiag1 walks the given diagonal direction until the edge pair fades
// or the step budget runs out. It returns the step count, the final edge
// strength, and the final sample pair.
func (p *weightsPass) searchDiag1(u, v, dirX, dirY float32) (steps, strength, eR, eG float32) {
	steps = -1
	strength = 1
	for steps < float32(p.cfg.MaxSearchStepsDiag-1) && strength > 0.9 {
		u += dirX * p.rtx
		v += dirY * p.rty
		steps++
		s := p.edges.SampleUV(u, v)
		eR, eG = s[0], s[1]
		strength = 0.5 * (eR + eG)
	}
	return steps, strength, eR, eG
}

// searchDiag2 is searchDiag1 for the second diagonal, where a quarter texel
// shift packs two edge samples into each bilinear fetch. The decode undoes
// the packing.
func (p *weightsPass) searchDiag2(u, v, dirX, dirY float32) (steps, strength, eR, eG float32) {
	u += 0.25 * p.rtx
	steps = -1
	strength = 1
	for steps < float32(p.cfg.MaxSearchStepsDiag-1) && strength > 0.9 {
		u += dirX * p.rtx
		v += dirY * p.rty
		steps++
		s := p.edges.SampleUV(u, v)
		eR = round32(s[0] * abs32(5*s[0]-3.75))
		eG = round32(s[1])
		strength = 0.5 * (eR + eG)
	}
	return steps, strength, eR, eG
}

// diagWeights handles both diagonal orientations for a pixel with a north
// edge and returns the combined red/green weights, or zeros when no diagonal
// pattern is present.
func (p *weightsPass) diagWeights(u, v, eR float32) (float32, float32) {
	var wr, wg float32

	// First diagonal, running down-left to up-right.
	var d1, d2, end1, end2 float32
	if eR > 0 {
		var eg float32
		d1, end1, _, eg = p.searchDiag1(u, v, -1, 1)
		if eg > 0.9 {
			d1 += 1
		}
	}
	d2, end2, _, _ = p.searchDiag1(u, v, 1, -1)

	if d1+d2 > 2 { // pattern length d1+d2+1 > 3
		// Fetch the crossing edges at both line ends. The quarter texel
		// shifts pack two fetches into one; the swizzled decode restores
		// the four individual edges.
		c1u := u + (-d1+0.25)*p.rtx
		c1v := v + d1*p.rty
		c2u := u + d2*p.rtx
		c2v := v + (-d2-0.25)*p.rty

		s1 := p.edges.SampleUV(c1u-p.rtx, c1v)
		s2 := p.edges.SampleUV(c2u+p.rtx, c2v)
		dx := round32(s1[0] * abs32(5*s1[0]-3.75))
		dy := round32(s1[1])
		dz := round32(s2[0] * abs32(5*s2[0]-3.75))
		dw := round32(s2[1])
		cX, cY, cZ, cW := dy, dx, dw, dz

		cc1 := 2*cX + cY
		cc2 := 2*cZ + cW
		// A crossing edge only counts when the walk actually reached the
		// line end.
		if end1 >= 0.9 {
			cc1 = 0
		}
		if end2 >= 0.9 {
			cc2 = 0
		}

		ar, ag := p.areaDiag(d1, d2, cc1, cc2)
		wr += ar
		wg += ag
	}

	// Second diagonal, running up-left to down-right.
	d1, end1, _, _ = p.searchDiag2(u, v, -1, -1)
	if p.edges.SampleUV(u+p.rtx, v)[0] > 0 {
		var eg float32
		d2, end2, _, eg = p.searchDiag2(u, v, 1, 1)
		if eg > 0.9 {
			d2 += 1
		}
	} else {
		d2, end2 = 0, 0
	}

	if d1+d2 > 2 {
		c1u := u - d1*p.rtx
		c1v := v - d1*p.rty
		c2u := u + d2*p.rtx
		c2v := v + d2*p.rty

		cX := p.edges.SampleUV(c1u-p.rtx, c1v)[1]
		cY := p.edges.SampleUV(c1u, c1v-p.rty)[0]
		s2 := p.edges.SampleUV(c2u+p.rtx, c2v)
		cZ, cW := s2[1], s2[0]

		cc1 := 2*cX + cY
		cc2 := 2*cZ + cW
		if end1 >= 0.9 {
			cc1 = 0
		}
		if end2 >= 0.9 {
			cc2 = 0
		}

		// This orientation stores its areas transposed.
		ag, ar := p.areaDiag(d1, d2, cc1, cc2)
		wr += ar
		wg += ag
	}

	return wr, wg
}

// cornersHorizontal scales down the weights of pattern ends that belong to
// genuine corners, keeping them sharp in proportion to the configured
// rounding.
func (p *weightsPass) cornersHorizontal(w1, w2 *float32, leftU, rightU, v float32, dLeft, dRight float32) {
	if p.cfg.CornerRounding >= 100 {
		return
	}
	norm := float32(p.cfg.CornerRounding) / 100.0

	lr1 := step32(dLeft, dRight)
	lr2 := step32(dRight, dLeft)
	r1 := (1 - norm) * lr1
	r2 := (1 - norm) * lr2
	// Pixels in the center of a line see both ends; halving keeps them
	// from being suppressed twice.
	sum := lr1 + lr2
	r1 /= sum
	r2 /= sum

	f1, f2 := float32(1), float32(1)
	f1 -= r1 * p.edges.SampleUV(leftU, v+p.rty)[0]
	f1 -= r2 * p.edges.SampleUV(rightU+p.rtx, v+p.rty)[0]
	f2 -= r1 * p.edges.SampleUV(leftU, v-2*p.rty)[0]
	f2 -= r2 * p.edges.SampleUV(rightU+p.rtx, v-2*p.rty)[0]

	*w1 *= saturate32(f1)
	*w2 *= saturate32(f2)
}

func (p *weightsPass) cornersVertical(w1, w2 *float32, u, topV, bottomV float32, dTop, dBottom float32) {
	if p.cfg.CornerRounding >= 100 {
		return
	}
	norm := float32(p.cfg.CornerRounding) / 100.0

	lr1 := step32(dTop, dBottom)
	lr2 := step32(dBottom, dTop)
	r1 := (1 - norm) * lr1
	r2 := (1 - norm) * lr2
	sum := lr1 + lr2
	r1 /= sum
	r2 /= sum

	f1, f2 := float32(1), float32(1)
	f1 -= r1 * p.edges.SampleUV(u+p.rtx, topV)[1]
	f1 -= r2 * p.edges.SampleUV(u+p.rtx, bottomV+p.rty)[1]
	f2 -= r1 * p.edges.SampleUV(u-2*p.rtx, topV)[1]
	f2 -= r2 * p.edges.SampleUV(u-2*p.rtx, bottomV+p.rty)[1]

	*w1 *= saturate32(f1)
	*w2 *= saturate32(f2)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// step32 returns 1 when v >= edge, matching the shader step intrinsic.
func step32(edge, v float32) float32 {
	if v >= edge {
		return 1
	}
	return 0
}

func saturate32(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round32(v float32) float32 {
	return float32(math.Round(float64(v)))
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
