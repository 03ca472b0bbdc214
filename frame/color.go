// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "golang.org/x/image/math/f32"

// Luma returns the Rec. 709 luma of a linear RGB color. The alpha channel is
// ignored.
func Luma(c f32.Vec4) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// RGBToYCoCg converts linear RGB to the YCoCg color space. Chroma-aware
// neighborhood statistics (variance clipping) behave better in YCoCg than in
// RGB because luma and chroma decorrelate.
func RGBToYCoCg(rgb f32.Vec3) f32.Vec3 {
	y := rgb[0]/4.0 + rgb[1]/2.0 + rgb[2]/4.0
	co := rgb[0]/2.0 - rgb[2]/2.0
	cg := -rgb[0]/4.0 + rgb[1]/2.0 - rgb[2]/4.0
	return f32.Vec3{y, co, cg}
}

// YCoCgToRGB converts YCoCg back to linear RGB, saturating each channel to
// [0, 1] like the shader round trip does.
func YCoCgToRGB(c f32.Vec3) f32.Vec3 {
	r := c[0] + c[1] - c[2]
	g := c[0] + c[2]
	b := c[0] - c[1] - c[2]
	return f32.Vec3{saturate(r), saturate(g), saturate(b)}
}

func saturate(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
