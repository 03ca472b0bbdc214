// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package taa

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/internal/parallel"
)

// Input bundles the buffers of one resolve step. Color, Depth, Motion,
// History and HistoryOut are required; the depth history pair is only needed
// when depth rejection is enabled. All buffers must share one extent, and
// History must not alias HistoryOut.
type Input struct {
	// Color is the current frame as rendered with this frame's jitter.
	Color *frame.ColorBuffer

	// Depth is the current frame's depth, reverse-Z (larger is closer).
	Depth *frame.DepthBuffer

	// Motion holds per-pixel UV offsets from the current frame back to the
	// previous one.
	Motion *frame.MotionBuffer

	// History is the previous accumulation; its alpha channel carries the
	// per-pixel confidence.
	History *frame.ColorBuffer

	// HistoryOut receives the new accumulation.
	HistoryOut *frame.ColorBuffer

	// DepthHistory and DepthHistoryOut form the optional depth pair.
	DepthHistory    *frame.DepthBuffer
	DepthHistoryOut *frame.DepthBuffer

	// Reset discards all history: the output is the current frame and the
	// accumulation restarts at confidence one.
	Reset bool
}

// Resolve blends the current frame with reprojected history, writing the
// anti-aliased result to output and the new accumulation to in.HistoryOut.
func Resolve(output *frame.ColorBuffer, in Input, cfg Config) error {
	if err := in.validate(output.Extent(), cfg); err != nil {
		return err
	}

	w := output.Width()
	h := output.Height()

	if in.Reset {
		parallel.ForRows(h, func(y int) {
			for x := 0; x < w; x++ {
				c := in.Color.At(x, y)
				output.Set(x, y, c)
				in.HistoryOut.Set(x, y, f32.Vec4{c[0], c[1], c[2], 1})
				if in.DepthHistoryOut != nil {
					in.DepthHistoryOut.Set(x, y, in.Depth.At(x, y))
				}
			}
		})
		return nil
	}

	parallel.ForRows(h, func(y int) {
		for x := 0; x < w; x++ {
			original := in.Color.At(x, y)

			// Dilate the motion vector: take it from the closest surface in
			// the diagonal neighborhood so the silhouette of a mover drags
			// its surroundings along instead of smearing against them.
			closestX, closestY := x, y
			closestDepth := in.Depth.At(x, y)
			for _, o := range [4][2]int{{-2, 2}, {2, 2}, {-2, -2}, {2, -2}} {
				if d := in.Depth.At(x+o[0], y+o[1]); d > closestDepth {
					closestDepth = d
					closestX, closestY = x+o[0], y+o[1]
				}
			}
			mv := in.Motion.At(closestX, closestY)

			confidence := in.History.At(x, y)[3]
			if abs32(mv[0])*float32(w) < cfg.MotionThreshold &&
				abs32(mv[1])*float32(h) < cfg.MotionThreshold {
				confidence += 10
			} else {
				confidence = 1
			}

			u := (float32(x) + 0.5) / float32(w)
			v := (float32(y) + 0.5) / float32(h)
			historyU := u - mv[0]
			historyV := v - mv[1]

			hist4 := frame.SampleCatmullRom(in.History, historyU, historyV)
			history := f32.Vec3{hist4[0], hist4[1], hist4[2]}
			current := f32.Vec3{original[0], original[1], original[2]}
			if cfg.Tonemap {
				history = tonemap(history)
				current = tonemap(current)
			}

			// Constrain the history to the statistical neighborhood of the
			// current frame. YCoCg decorrelates luma from chroma, which
			// tightens the clip box.
			var m1, m2 f32.Vec3
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					c := in.Color.At(x+dx, y+dy)
					s := f32.Vec3{c[0], c[1], c[2]}
					if cfg.Tonemap {
						s = tonemap(s)
					}
					s = frame.RGBToYCoCg(s)
					for i := 0; i < 3; i++ {
						m1[i] += s[i]
						m2[i] += s[i] * s[i]
					}
				}
			}
			var mean, stddev f32.Vec3
			for i := 0; i < 3; i++ {
				mean[i] = m1[i] / 9
				variance := m2[i]/9 - mean[i]*mean[i]
				if variance < 0 {
					variance = 0
				}
				stddev[i] = float32(math.Sqrt(float64(variance)))
			}
			histYCC := frame.RGBToYCoCg(history)
			histYCC = clipTowardsCenter(histYCC,
				sub3(mean, stddev), add3(mean, stddev))
			history = frame.YCoCgToRGB(histYCC)

			rejected := false
			if cfg.DepthRejection && in.DepthHistory != nil {
				prev := sampleDepthNearest(in.DepthHistory, historyU, historyV)
				cur := in.Depth.At(x, y)
				ref := max32(max32(prev, cur), 1e-6)
				if abs32(prev-cur)/ref > cfg.DepthRejectionThreshold {
					rejected = true
				}
			}

			currentFactor := clamp32(1.0/confidence,
				cfg.MinHistoryBlendRate, cfg.DefaultHistoryBlendRate)
			if historyU < 0 || historyU > 1 || historyV < 0 || historyV > 1 || rejected {
				currentFactor = 1
				confidence = 1
			}

			blended := f32.Vec3{
				history[0] + (current[0]-history[0])*currentFactor,
				history[1] + (current[1]-history[1])*currentFactor,
				history[2] + (current[2]-history[2])*currentFactor,
			}
			if cfg.Tonemap {
				blended = reverseTonemap(blended)
			}

			output.Set(x, y, f32.Vec4{blended[0], blended[1], blended[2], original[3]})
			in.HistoryOut.Set(x, y, f32.Vec4{blended[0], blended[1], blended[2], confidence})
			if in.DepthHistoryOut != nil {
				in.DepthHistoryOut.Set(x, y, in.Depth.At(x, y))
			}
		}
	})
	return nil
}

func (in Input) validate(extent frame.Extent, cfg Config) error {
	check := func(name string, e frame.Extent) error {
		if e != extent {
			return fmt.Errorf("taa: resolve: %w: %s %dx%d, output %dx%d",
				frame.ErrExtentMismatch, name, e.Width, e.Height, extent.Width, extent.Height)
		}
		return nil
	}
	if in.Color == nil || in.Depth == nil || in.Motion == nil ||
		in.History == nil || in.HistoryOut == nil {
		return fmt.Errorf("taa: resolve: missing input buffer")
	}
	if err := check("color", in.Color.Extent()); err != nil {
		return err
	}
	if err := check("depth", in.Depth.Extent()); err != nil {
		return err
	}
	if err := check("motion", in.Motion.Extent()); err != nil {
		return err
	}
	if err := check("history", in.History.Extent()); err != nil {
		return err
	}
	if err := check("history out", in.HistoryOut.Extent()); err != nil {
		return err
	}
	if cfg.DepthRejection && (in.DepthHistory == nil || in.DepthHistoryOut == nil) {
		return fmt.Errorf("taa: resolve: depth rejection enabled without depth history")
	}
	if in.DepthHistory != nil {
		if err := check("depth history", in.DepthHistory.Extent()); err != nil {
			return err
		}
	}
	if in.DepthHistoryOut != nil {
		if err := check("depth history out", in.DepthHistoryOut.Extent()); err != nil {
			return err
		}
	}
	return nil
}

// clipTowardsCenter moves c to the surface of the axis-aligned box when it
// lies outside, shrinking along the line to the box center so hue shifts
// stay small.
func clipTowardsCenter(c, boxMin, boxMax f32.Vec3) f32.Vec3 {
	var center, extent f32.Vec3
	for i := 0; i < 3; i++ {
		center[i] = 0.5 * (boxMax[i] + boxMin[i])
		extent[i] = 0.5*(boxMax[i]-boxMin[i]) + 1e-8
	}
	var maxUnit float32
	for i := 0; i < 3; i++ {
		unit := abs32((c[i] - center[i]) / extent[i])
		if unit > maxUnit {
			maxUnit = unit
		}
	}
	if maxUnit <= 1 {
		return c
	}
	return f32.Vec3{
		center[0] + (c[0]-center[0])/maxUnit,
		center[1] + (c[1]-center[1])/maxUnit,
		center[2] + (c[2]-center[2])/maxUnit,
	}
}

// sampleDepthNearest fetches the depth texel containing (u, v).
func sampleDepthNearest(b *frame.DepthBuffer, u, v float32) float32 {
	x := int(u * float32(b.Width()))
	y := int(v * float32(b.Height()))
	return b.At(x, y)
}

// tonemap maps a linear color into [0, 1) while preserving hue.
func tonemap(c f32.Vec3) f32.Vec3 {
	s := 1.0 / (max3(c) + 1.0)
	return f32.Vec3{c[0] * s, c[1] * s, c[2] * s}
}

func reverseTonemap(c f32.Vec3) f32.Vec3 {
	s := 1.0 / (1.0 - max3(c))
	return f32.Vec3{c[0] * s, c[1] * s, c[2] * s}
}

func max3(c f32.Vec3) float32 {
	return max32(c[0], max32(c[1], c[2]))
}

func add3(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub3(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
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

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
