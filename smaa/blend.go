// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/internal/parallel"
)

// BlendNeighborhood applies the blending weights to src and writes the
// anti-aliased result to dst. Each pixel gathers the four weights that
// affect it: its own left and top weights plus the right neighbor's alpha
// and the lower neighbor's green, then blends along the dominant axis with
// two bilinear fetches. Pixels without any weight pass through untouched.
//
// dst must not alias src or weights.
func BlendNeighborhood(dst, src, weights *frame.ColorBuffer) error {
	if dst.Extent() != src.Extent() || weights.Extent() != src.Extent() {
		return fmt.Errorf("smaa: blend: %w: dst %dx%d, src %dx%d, weights %dx%d",
			frame.ErrExtentMismatch, dst.Width(), dst.Height(),
			src.Width(), src.Height(), weights.Width(), weights.Height())
	}

	w, h := src.Width(), src.Height()
	rtx := 1.0 / float32(w)
	rty := 1.0 / float32(h)

	parallel.ForRows(h, func(y int) {
		for x := 0; x < w; x++ {
			cur := weights.At(x, y)
			aX := weights.At(x+1, y)[3] // blends us toward the right
			aY := weights.At(x, y+1)[1] // blends us toward the bottom
			aZ := cur[2]                // blends us toward the left
			aW := cur[0]                // blends us toward the top

			if aX+aY+aZ+aW < 1e-5 {
				dst.Set(x, y, src.At(x, y))
				continue
			}

			horizontal := max32(aX, aZ) > max32(aY, aW)

			var o1u, o1v, o2u, o2v float32
			var w1, w2 float32
			if horizontal {
				o1u, o2u = aX, aZ
				w1, w2 = aX, aZ
			} else {
				o1v, o2v = aY, aW
				w1, w2 = aY, aW
			}
			sum := w1 + w2
			w1 /= sum
			w2 /= sum

			u := (float32(x) + 0.5) * rtx
			v := (float32(y) + 0.5) * rty
			c1 := src.SampleUV(u+o1u*rtx, v+o1v*rty)
			c2 := src.SampleUV(u-o2u*rtx, v-o2v*rty)

			dst.Set(x, y, f32.Vec4{
				w1*c1[0] + w2*c2[0],
				w1*c1[1] + w2*c2[1],
				w1*c1[2] + w2*c2[2],
				w1*c1[3] + w2*c2[3],
			})
		}
	})
	return nil
}
