// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"errors"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/framegraph"
	"github.com/gogpu/antialias/lut"
)

// gray returns a neutral color whose luma equals v.
func gray(v float32) f32.Vec4 {
	return f32.Vec4{v, v, v, 1}
}

// verticalStep builds a buffer whose left half is dark and right half
// bright, split at w/2.
func verticalStep(w, h int) *frame.ColorBuffer {
	b := frame.NewColorBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				b.Set(x, y, gray(1))
			} else {
				b.Set(x, y, gray(0))
			}
		}
	}
	return b
}

// staircase builds a buffer that is bright strictly below the main diagonal,
// producing a single-pixel staircase boundary.
func staircase(n int) *frame.ColorBuffer {
	b := frame.NewColorBuffer(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if x > y {
				b.Set(x, y, gray(1))
			} else {
				b.Set(x, y, gray(0))
			}
		}
	}
	return b
}

func equalBuffers(a, b *frame.ColorBuffer) bool {
	pa, pb := a.Pix(), b.Pix()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		preset    Preset
		threshold float32
		steps     int
		diagSteps int
		rounding  int
	}{
		{PresetLow, 0.15, 4, 0, 100},
		{PresetMedium, 0.1, 8, 0, 100},
		{PresetHigh, 0.1, 16, 8, 25},
		{PresetUltra, 0.05, 32, 16, 25},
	}
	for _, tt := range tests {
		cfg := tt.preset.Config()
		if cfg.Threshold != tt.threshold || cfg.MaxSearchSteps != tt.steps ||
			cfg.MaxSearchStepsDiag != tt.diagSteps || cfg.CornerRounding != tt.rounding {
			t.Errorf("%v.Config() = %+v", tt.preset, cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%v.Config().Validate() = %v", tt.preset, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := PresetMedium.Config()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Threshold = 0 }},
		{"threshold too high", func(c *Config) { c.Threshold = 0.6 }},
		{"contrast factor below one", func(c *Config) { c.LocalContrastAdaptationFactor = 0.5 }},
		{"zero search steps", func(c *Config) { c.MaxSearchSteps = 0 }},
		{"search steps too high", func(c *Config) { c.MaxSearchSteps = 113 }},
		{"negative diag steps", func(c *Config) { c.MaxSearchStepsDiag = -1 }},
		{"diag steps too high", func(c *Config) { c.MaxSearchStepsDiag = 21 }},
		{"negative corner rounding", func(c *Config) { c.CornerRounding = -1 }},
		{"corner rounding too high", func(c *Config) { c.CornerRounding = 101 }},
	}
	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: Validate() = %v, want ErrConfig", tt.name, err)
		}
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	if _, err := NewPipeline(Config{}, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("NewPipeline(zero config) = %v, want ErrConfig", err)
	}
	if _, err := NewPipeline(PresetHigh.Config(), nil); err != nil {
		t.Errorf("NewPipeline(high preset) = %v", err)
	}
}

func TestDetectEdgesFlat(t *testing.T) {
	src := frame.NewColorBuffer(8, 8)
	src.Clear(gray(0.5))
	dst := frame.NewColorBuffer(8, 8)

	if err := DetectEdges(dst, src, PresetMedium.Config()); err != nil {
		t.Fatalf("DetectEdges: %v", err)
	}
	for _, v := range dst.Pix() {
		if v != 0 {
			t.Fatal("flat image produced edges")
		}
	}
}

func TestDetectEdgesVerticalStep(t *testing.T) {
	src := verticalStep(8, 8)
	dst := frame.NewColorBuffer(8, 8)

	if err := DetectEdges(dst, src, PresetMedium.Config()); err != nil {
		t.Fatalf("DetectEdges: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			e := dst.At(x, y)
			wantR := float32(0)
			if x == 4 {
				wantR = 1
			}
			if e[0] != wantR || e[1] != 0 {
				t.Errorf("edge at (%d, %d) = (%v, %v), want (%v, 0)", x, y, e[0], e[1], wantR)
			}
		}
	}
}

func TestDetectEdgesExtentMismatch(t *testing.T) {
	src := frame.NewColorBuffer(8, 8)
	dst := frame.NewColorBuffer(4, 4)
	if err := DetectEdges(dst, src, PresetMedium.Config()); !errors.Is(err, frame.ErrExtentMismatch) {
		t.Errorf("DetectEdges with mismatched extents = %v, want ErrExtentMismatch", err)
	}
}

func TestDetectEdgesContrastAdaptation(t *testing.T) {
	// A weak step right next to a strong one must be suppressed: the strong
	// delta dominates the neighborhood.
	src := frame.NewColorBuffer(8, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			switch {
			case x == 0:
				src.Set(x, y, gray(0))
			case x == 1:
				src.Set(x, y, gray(0.8))
			default:
				src.Set(x, y, gray(1))
			}
		}
	}
	dst := frame.NewColorBuffer(8, 4)
	if err := DetectEdges(dst, src, PresetMedium.Config()); err != nil {
		t.Fatalf("DetectEdges: %v", err)
	}

	if e := dst.At(1, 2); e[0] != 1 {
		t.Errorf("strong edge at x=1 not detected: %v", e)
	}
	// Delta 0.2 exceeds the 0.1 threshold but loses against the 0.8
	// neighborhood maximum.
	if e := dst.At(2, 2); e[0] != 0 {
		t.Errorf("weak edge at x=2 not suppressed: %v", e)
	}
}

func TestComputeWeightsNoEdges(t *testing.T) {
	edges := frame.NewColorBuffer(8, 8)
	dst := frame.NewColorBuffer(8, 8)
	if err := ComputeWeights(dst, edges, lut.Default(), PresetMedium.Config()); err != nil {
		t.Fatalf("ComputeWeights: %v", err)
	}
	for _, v := range dst.Pix() {
		if v != 0 {
			t.Fatal("empty edge mask produced weights")
		}
	}
}

func TestProcessFlatIsIdentity(t *testing.T) {
	src := frame.NewColorBuffer(12, 12)
	src.Clear(gray(0.5))
	dst := frame.NewColorBuffer(12, 12)

	p, err := NewPipeline(PresetUltra.Config(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Process(dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !equalBuffers(dst, src) {
		t.Error("flat image changed by SMAA")
	}
}

func TestProcessStraightEdgeIsIdentity(t *testing.T) {
	// A perfectly straight edge has no crossing edges at either end, so the
	// pattern resolves to zero coverage and the image passes through.
	src := verticalStep(16, 16)
	dst := frame.NewColorBuffer(16, 16)

	p, err := NewPipeline(PresetMedium.Config(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Process(dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !equalBuffers(dst, src) {
		t.Error("straight vertical edge changed by SMAA")
	}
}

func TestProcessStaircaseBlendsBoundary(t *testing.T) {
	src := staircase(16)
	dst := frame.NewColorBuffer(16, 16)

	p, err := NewPipeline(PresetHigh.Config(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Process(dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}

	changed := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			in := src.At(x, y)
			out := dst.At(x, y)
			if in == out {
				continue
			}
			changed++
			// Changes stay within the staircase band: weights only appear
			// on boundary pixels and blending reaches one texel further.
			band := x - y
			if band < -2 || band > 2 {
				t.Errorf("pixel (%d, %d) outside the boundary band changed", x, y)
			}
			for i := 0; i < 4; i++ {
				if out[i] < 0 || out[i] > 1 {
					t.Errorf("pixel (%d, %d) channel %d = %v outside [0, 1]", x, y, i, out[i])
				}
			}
		}
	}
	if changed == 0 {
		t.Error("staircase boundary not blended")
	}
}

func TestPipelineNodeDeclarations(t *testing.T) {
	p, err := NewPipeline(PresetMedium.Config(), nil)
	if err != nil {
		t.Fatal(err)
	}
	nodes := p.Nodes("color", "smaa.color")
	if len(nodes) != 3 {
		t.Fatalf("Nodes returned %d nodes, want 3", len(nodes))
	}

	reads := func(n framegraph.Node, r framegraph.Resource) bool {
		for _, v := range n.Reads() {
			if v == r {
				return true
			}
		}
		return false
	}

	if !reads(nodes[0], "color") || nodes[0].Writes()[0] != ResourceEdges {
		t.Errorf("edges node declarations wrong: reads %v writes %v",
			nodes[0].Reads(), nodes[0].Writes())
	}
	if !reads(nodes[1], ResourceEdges) || nodes[1].Writes()[0] != ResourceWeights {
		t.Errorf("weights node declarations wrong: reads %v writes %v",
			nodes[1].Reads(), nodes[1].Writes())
	}
	if !reads(nodes[2], "color") || !reads(nodes[2], ResourceWeights) ||
		nodes[2].Writes()[0] != "smaa.color" {
		t.Errorf("blend node declarations wrong: reads %v writes %v",
			nodes[2].Reads(), nodes[2].Writes())
	}
}

func TestPipelineThroughGraph(t *testing.T) {
	p, err := NewPipeline(PresetHigh.Config(), nil)
	if err != nil {
		t.Fatal(err)
	}

	g := framegraph.New()
	g.AddExternal("color")
	// Register in reverse to prove ordering comes from declarations.
	nodes := p.Nodes("color", "smaa.color")
	for i := len(nodes) - 1; i >= 0; i-- {
		g.Add(nodes[i])
	}

	src := staircase(16)
	ctx := framegraph.NewExecContext()
	ctx.Set("color", src)
	if err := g.Execute(ctx); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out, err := ctx.Color("smaa.color")
	if err != nil {
		t.Fatalf("output resource: %v", err)
	}
	if out.Extent() != src.Extent() {
		t.Errorf("output extent %+v, want %+v", out.Extent(), src.Extent())
	}
	if equalBuffers(out, src) {
		t.Error("graph execution produced no blending on a staircase")
	}
}
