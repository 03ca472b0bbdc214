// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/internal/parallel"
)

// DetectEdges writes the luma edge mask of src into the red and green
// channels of dst. Red flags an edge on the pixel's left border, green on
// its top border; the other channels are zeroed.
//
// A delta only counts as an edge when it also holds up against the local
// contrast: deltas far weaker than the strongest one in the neighborhood are
// dropped, which kills the crawling noise low thresholds would otherwise
// produce. dst must not alias src.
func DetectEdges(dst, src *frame.ColorBuffer, cfg Config) error {
	if dst.Extent() != src.Extent() {
		return fmt.Errorf("smaa: detect edges: %w: dst %dx%d, src %dx%d",
			frame.ErrExtentMismatch, dst.Width(), dst.Height(), src.Width(), src.Height())
	}

	w, h := src.Width(), src.Height()
	parallel.ForRows(h, func(y int) {
		for x := 0; x < w; x++ {
			l := frame.Luma(src.At(x, y))
			lLeft := frame.Luma(src.At(x-1, y))
			lTop := frame.Luma(src.At(x, y-1))

			dLeft := abs32(l - lLeft)
			dTop := abs32(l - lTop)
			edgeLeft := dLeft >= cfg.Threshold
			edgeTop := dTop >= cfg.Threshold
			if !edgeLeft && !edgeTop {
				dst.Set(x, y, f32.Vec4{})
				continue
			}

			// Local contrast adaptation. The neighborhood includes the
			// opposite borders and the texels one step further out on the
			// edge side.
			dRight := abs32(l - frame.Luma(src.At(x+1, y)))
			dBottom := abs32(l - frame.Luma(src.At(x, y+1)))
			maxX := max32(dLeft, dRight)
			maxY := max32(dTop, dBottom)
			maxX = max32(maxX, abs32(lLeft-frame.Luma(src.At(x-2, y))))
			maxY = max32(maxY, abs32(lTop-frame.Luma(src.At(x, y-2))))
			finalDelta := max32(maxX, maxY)

			var out f32.Vec4
			if edgeLeft && cfg.LocalContrastAdaptationFactor*dLeft >= finalDelta {
				out[0] = 1
			}
			if edgeTop && cfg.LocalContrastAdaptationFactor*dTop >= finalDelta {
				out[1] = 1
			}
			dst.Set(x, y, out)
		}
	})
	return nil
}
