// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestExtent(t *testing.T) {
	tests := []struct {
		name   string
		extent Extent
		zero   bool
		pixels int
	}{
		{"typical", Extent{Width: 1920, Height: 1080}, false, 1920 * 1080},
		{"one pixel", Extent{Width: 1, Height: 1}, false, 1},
		{"zero width", Extent{Width: 0, Height: 10}, true, 0},
		{"zero height", Extent{Width: 10, Height: 0}, true, 0},
		{"negative", Extent{Width: -4, Height: 4}, true, -16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.extent.IsZero(); got != tt.zero {
				t.Errorf("IsZero() = %v, want %v", got, tt.zero)
			}
			if got := tt.extent.Pixels(); got != tt.pixels {
				t.Errorf("Pixels() = %d, want %d", got, tt.pixels)
			}
		})
	}
}

func TestColorBufferAtClampsToEdge(t *testing.T) {
	b := NewColorBuffer(4, 4)
	b.Set(0, 0, f32.Vec4{1, 0, 0, 1})
	b.Set(3, 3, f32.Vec4{0, 1, 0, 1})

	tests := []struct {
		name string
		x, y int
		want f32.Vec4
	}{
		{"inside", 0, 0, f32.Vec4{1, 0, 0, 1}},
		{"negative x", -5, 0, f32.Vec4{1, 0, 0, 1}},
		{"negative y", 0, -1, f32.Vec4{1, 0, 0, 1}},
		{"past right", 10, 3, f32.Vec4{0, 1, 0, 1}},
		{"past bottom", 3, 100, f32.Vec4{0, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.At(tt.x, tt.y); got != tt.want {
				t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestColorBufferSetIgnoresOutOfRange(t *testing.T) {
	b := NewColorBuffer(2, 2)
	b.Set(-1, 0, f32.Vec4{1, 1, 1, 1})
	b.Set(2, 0, f32.Vec4{1, 1, 1, 1})
	b.Set(0, 2, f32.Vec4{1, 1, 1, 1})

	for _, v := range b.Pix() {
		if v != 0 {
			t.Fatalf("out-of-range Set modified buffer contents: %v", b.Pix())
		}
	}
}

func TestColorBufferSampleUV(t *testing.T) {
	// 2x1 buffer: black texel then white texel.
	b := NewColorBuffer(2, 1)
	b.Set(1, 0, f32.Vec4{1, 1, 1, 1})

	tests := []struct {
		name string
		u    float32
		want float32 // expected value of each color channel
	}{
		{"left texel center", 0.25, 0},
		{"right texel center", 0.75, 1},
		{"midpoint", 0.5, 0.5},
		{"clamped left", -1.0, 0},
		{"clamped right", 2.0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.SampleUV(tt.u, 0.5)
			if math.Abs(float64(got[0]-tt.want)) > 1e-6 {
				t.Errorf("SampleUV(%v, 0.5)[0] = %v, want %v", tt.u, got[0], tt.want)
			}
		})
	}
}

func TestColorBufferCopyFrom(t *testing.T) {
	src := NewColorBuffer(3, 2)
	src.Set(2, 1, f32.Vec4{0.5, 0.25, 0.125, 1})

	dst := NewColorBuffer(3, 2)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	if got, want := dst.At(2, 1), src.At(2, 1); got != want {
		t.Errorf("copied texel = %v, want %v", got, want)
	}

	bad := NewColorBuffer(2, 2)
	if err := bad.CopyFrom(src); !errors.Is(err, ErrExtentMismatch) {
		t.Errorf("CopyFrom() with mismatched extent: error = %v, want ErrExtentMismatch", err)
	}
}

func TestDepthBufferClampsToEdge(t *testing.T) {
	b := NewDepthBuffer(2, 2)
	b.Set(1, 1, 0.75)

	if got := b.At(5, 5); got != 0.75 {
		t.Errorf("At(5, 5) = %v, want 0.75", got)
	}
	if got := b.At(-1, -1); got != 0 {
		t.Errorf("At(-1, -1) = %v, want 0", got)
	}
}

func TestMotionBufferRoundTrip(t *testing.T) {
	b := NewMotionBuffer(3, 3)
	v := f32.Vec2{0.25, -0.5}
	b.Set(1, 2, v)

	if got := b.At(1, 2); got != v {
		t.Errorf("At(1, 2) = %v, want %v", got, v)
	}
	if got := b.At(1, 5); got != v {
		t.Errorf("At(1, 5) clamped = %v, want %v", got, v)
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name string
		c    f32.Vec4
		want float32
	}{
		{"black", f32.Vec4{0, 0, 0, 1}, 0},
		{"white", f32.Vec4{1, 1, 1, 1}, 1},
		{"green dominates", f32.Vec4{0, 1, 0, 1}, 0.7152},
		{"alpha ignored", f32.Vec4{1, 0, 0, 0}, 0.2126},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Luma(tt.c); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Luma(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestYCoCgRoundTrip(t *testing.T) {
	colors := []f32.Vec3{
		{0, 0, 0},
		{1, 1, 1},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.25, 0.5, 0.75},
	}
	for _, c := range colors {
		got := YCoCgToRGB(RGBToYCoCg(c))
		for i := 0; i < 3; i++ {
			if math.Abs(float64(got[i]-c[i])) > 1e-6 {
				t.Errorf("YCoCg round trip of %v = %v", c, got)
				break
			}
		}
	}
}

func TestSampleCatmullRomAtTexelCenter(t *testing.T) {
	b := NewColorBuffer(8, 8)
	b.Clear(f32.Vec4{0.25, 0.25, 0.25, 1})
	b.Set(4, 4, f32.Vec4{1, 0.5, 0, 1})

	// Sampling exactly at a texel center reproduces that texel: the outer
	// Catmull-Rom weights vanish at zero fractional offset.
	got := SampleCatmullRom(b, 4.5/8.0, 4.5/8.0)
	want := f32.Vec4{1, 0.5, 0, 1}
	for i := 0; i < 4; i++ {
		if math.Abs(float64(got[i]-want[i])) > 1e-5 {
			t.Fatalf("SampleCatmullRom(center) = %v, want %v", got, want)
		}
	}
}

func TestSampleCatmullRomNearConstant(t *testing.T) {
	b := NewColorBuffer(8, 8)
	b.Clear(f32.Vec4{0.6, 0.6, 0.6, 1})

	// Off-center samples lose the skipped corner taps, so a constant image
	// reproduces to within the corner weight mass (< 2%).
	got := SampleCatmullRom(b, 0.43, 0.57)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(got[i]-0.6)) > 0.02 {
			t.Fatalf("SampleCatmullRom(constant) = %v, want approximately 0.6", got)
		}
	}
}
