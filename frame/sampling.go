// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "golang.org/x/image/math/f32"

// SampleCatmullRom samples b at normalized (u, v) using a 5-tap approximation
// of the 9-tap Catmull-Rom filter. Catmull-Rom resampling keeps reprojected
// history sharp where plain bilinear filtering would blur it a little more
// every frame. The corner taps of the full filter carry almost no weight and
// are skipped; the remaining weights are used unnormalized, which is visually
// indistinguishable from the renormalized version.
func SampleCatmullRom(b *ColorBuffer, u, v float32) f32.Vec4 {
	w := float32(b.Width())
	h := float32(b.Height())

	px := u * w
	py := v * h
	cx := floorF(px-0.5) + 0.5
	cy := floorF(py-0.5) + 0.5
	fx := px - cx
	fy := py - cy

	w0x, w12x, w3x := catmullRomWeights(fx)
	w0y, w12y, w3y := catmullRomWeights(fy)

	// Texel positions in UV space. The w1/w2 pair collapses into a single
	// bilinear tap placed between the two texels.
	p12x := (cx + catmullRomCenter(fx)) / w
	p12y := (cy + catmullRomCenter(fy)) / h
	p0x := (cx - 1.0) / w
	p0y := (cy - 1.0) / h
	p3x := (cx + 2.0) / w
	p3y := (cy + 2.0) / h

	var out f32.Vec4
	accumulate(&out, b.SampleUV(p12x, p0y), w12x*w0y)
	accumulate(&out, b.SampleUV(p0x, p12y), w0x*w12y)
	accumulate(&out, b.SampleUV(p12x, p12y), w12x*w12y)
	accumulate(&out, b.SampleUV(p3x, p12y), w3x*w12y)
	accumulate(&out, b.SampleUV(p12x, p3y), w12x*w3y)
	return out
}

// catmullRomWeights returns the outer weights w0, w3 and the merged central
// weight w1+w2 of the Catmull-Rom kernel for a fractional offset f.
func catmullRomWeights(f float32) (w0, w12, w3 float32) {
	w0 = f * (-0.5 + f*(1.0-0.5*f))
	w1 := 1.0 + f*f*(-2.5+1.5*f)
	w2 := f * (0.5 + f*(2.0-1.5*f))
	w3 = f * f * (-0.5 + 0.5*f)
	return w0, w1 + w2, w3
}

// catmullRomCenter returns the offset of the merged central tap from the
// rounding base texel, in texels.
func catmullRomCenter(f float32) float32 {
	w1 := 1.0 + f*f*(-2.5+1.5*f)
	w2 := f * (0.5 + f*(2.0-1.5*f))
	return w2 / (w1 + w2)
}

func accumulate(dst *f32.Vec4, c f32.Vec4, w float32) {
	dst[0] += c[0] * w
	dst[1] += c[1] * w
	dst[2] += c[2] * w
	dst[3] += c[3] * w
}

func floorF(f float32) float32 {
	return float32(floorInt(f))
}
