package antialias

import (
	"errors"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// flatFrame builds a static frame: constant color, mid depth, zero motion.
func flatFrame(n int, c f32.Vec4) FrameInput {
	color := frame.NewColorBuffer(n, n)
	color.Clear(c)
	depth := frame.NewDepthBuffer(n, n)
	depth.Fill(0.5)
	return FrameInput{
		Color:  color,
		Depth:  depth,
		Motion: frame.NewMotionBuffer(n, n),
	}
}

func vec4Near(a, b f32.Vec4, tol float32) bool {
	for i := range a {
		d := a[i] - b[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

func TestNewDefaults(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v, want nil error", err)
	}
	if !p.SMAAEnabled() {
		t.Error("SMAAEnabled() = false, want true")
	}
	if !p.TAAEnabled() {
		t.Error("TAAEnabled() = false, want true")
	}
}

func TestNewInvalidSMAAConfigDisablesPass(t *testing.T) {
	cfg := smaa.PresetHigh.Config()
	cfg.Threshold = 0.9

	p, err := New(WithSMAAConfig(cfg))
	if err == nil {
		t.Fatal("New() with invalid spatial config should report an error")
	}
	if !errors.Is(err, smaa.ErrConfig) {
		t.Errorf("error should wrap smaa.ErrConfig, got: %v", err)
	}
	if p.SMAAEnabled() {
		t.Error("SMAAEnabled() = true after invalid config, want false")
	}
	if !p.TAAEnabled() {
		t.Error("TAAEnabled() = false, want true; other passes must survive")
	}
}

func TestNewInvalidTAAConfigDisablesPass(t *testing.T) {
	cfg := taa.DefaultConfig()
	cfg.DefaultHistoryBlendRate = 1.5

	p, err := New(WithTAA(cfg))
	if err == nil {
		t.Fatal("New() with invalid temporal config should report an error")
	}
	if !errors.Is(err, taa.ErrConfig) {
		t.Errorf("error should wrap taa.ErrConfig, got: %v", err)
	}
	if p.TAAEnabled() {
		t.Error("TAAEnabled() = true after invalid config, want false")
	}
	if !p.SMAAEnabled() {
		t.Error("SMAAEnabled() = false, want true; other passes must survive")
	}
}

type badTables struct{}

func (badTables) AreaTable() []float32   { return make([]float32, 7) }
func (badTables) SearchTable() []float32 { return make([]float32, 7) }

func TestNewBadLookupTablesDisableSMAA(t *testing.T) {
	p, err := New(WithLookupTables(badTables{}))
	if err == nil {
		t.Fatal("New() with undersized lookup tables should report an error")
	}
	if p.SMAAEnabled() {
		t.Error("SMAAEnabled() = true with bad tables, want false")
	}
	if !p.TAAEnabled() {
		t.Error("TAAEnabled() = false, want true")
	}
}

func TestNewBadJitterLengthFallsBackToDefault(t *testing.T) {
	p, err := New(WithJitterLength(4))
	if err == nil {
		t.Fatal("New() with jitter length 4 should report an error")
	}

	// The view must carry the default period. With period 4 the index would
	// have wrapped to 0 here; with the default 8 it sits at 4.
	v := p.View(1)
	for range 4 {
		v.NextJitter()
	}
	if got := v.JitterIndex(); got != 4 {
		t.Errorf("JitterIndex() after 4 frames = %d, want 4", got)
	}
}

func TestJitterPeriodicity(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	seen := make(map[[2]float32]bool)
	var first [8][2]float32
	for i := range first {
		dx, dy := v.NextJitter()
		if dx < -0.5 || dx > 0.5 || dy < -0.5 || dy > 0.5 {
			t.Errorf("offset %d = (%v, %v) outside [-0.5, 0.5]", i, dx, dy)
		}
		o := [2]float32{dx, dy}
		if seen[o] {
			t.Errorf("offset %d = (%v, %v) repeats within one period", i, dx, dy)
		}
		seen[o] = true
		first[i] = o
	}

	if got := v.JitterIndex(); got != 0 {
		t.Errorf("JitterIndex() after full period = %d, want 0", got)
	}
	dx, dy := v.NextJitter()
	if dx != first[0][0] || dy != first[0][1] {
		t.Errorf("offset 8 = (%v, %v), want (%v, %v); sequence must repeat",
			dx, dy, first[0][0], first[0][1])
	}
}

func TestApplyJitter(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)
	v.NextJitter() // index 1 has a nonzero offset on both axes

	var persp f32.Mat4
	persp[0], persp[5], persp[10], persp[11] = 1, 1, -1, -1
	if !v.ApplyJitter(&persp, 1920, 1080) {
		t.Error("ApplyJitter() = false for perspective matrix, want true")
	}
	if persp[2] == 0 || persp[6] == 0 {
		t.Errorf("projection not displaced: m[2] = %v, m[6] = %v", persp[2], persp[6])
	}

	var ortho f32.Mat4
	ortho[0], ortho[5], ortho[10], ortho[15] = 1, 1, 1, 1
	if v.ApplyJitter(&ortho, 1920, 1080) {
		t.Error("ApplyJitter() = true for orthographic matrix, want false")
	}
	if ortho[2] != 0 || ortho[6] != 0 {
		t.Error("orthographic matrix must stay untouched")
	}
}

func TestResolvePassThrough(t *testing.T) {
	p, err := New(WithoutSMAA(), WithoutTAA())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	in := flatFrame(8, f32.Vec4{0.2, 0.4, 0.6, 1})
	out, err := v.Resolve(in)
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if out != in.Color {
		t.Error("with all passes disabled Resolve must return the input buffer")
	}
}

func TestResolveSMAAOnlyFlat(t *testing.T) {
	p, err := New(WithoutTAA())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.3, 0.5, 0.7, 1}
	color := frame.NewColorBuffer(12, 12)
	color.Clear(c)

	out, err := v.Resolve(FrameInput{Color: color})
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if out == color {
		t.Error("spatial pass must write to its own target, not the input")
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if got := out.At(x, y); got != c {
				t.Fatalf("out.At(%d, %d) = %v, want %v; flat input must pass through", x, y, got, c)
			}
		}
	}
}

func TestResolveFullChainStatic(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.4, 0.45, 0.5, 1}
	in := flatFrame(16, c)

	// Frame 1 starts a fresh accumulation: the output is the input.
	v.NextJitter()
	out, err := v.Resolve(in)
	if err != nil {
		t.Fatalf("frame 1: Resolve() = %v", err)
	}
	if got := out.At(8, 8); got != c {
		t.Errorf("frame 1: out = %v, want %v", got, c)
	}

	// Frame 2 blends history with an identical frame and must stay put.
	v.NextJitter()
	out, err = v.Resolve(in)
	if err != nil {
		t.Fatalf("frame 2: Resolve() = %v", err)
	}
	if got := out.At(8, 8); !vec4Near(got, c, 1e-5) {
		t.Errorf("frame 2: out = %v, want ~%v", got, c)
	}

	// A history reset restarts both accumulation and the jitter phase.
	in.ResetHistory = true
	v.NextJitter()
	out, err = v.Resolve(in)
	if err != nil {
		t.Fatalf("frame 3: Resolve() = %v", err)
	}
	if got := out.At(8, 8); got != c {
		t.Errorf("frame 3: out = %v, want %v after reset", got, c)
	}
	if got := v.JitterIndex(); got != 0 {
		t.Errorf("JitterIndex() after reset = %d, want 0", got)
	}
}

func TestResolveResolutionChange(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.6, 0.2, 0.1, 1}
	for range 3 {
		v.NextJitter()
	}
	if _, err := v.Resolve(flatFrame(8, c)); err != nil {
		t.Fatalf("8x8 frame: Resolve() = %v", err)
	}
	if got := v.JitterIndex(); got != 3 {
		t.Fatalf("JitterIndex() = %d, want 3; first frame must not reset jitter", got)
	}

	out, err := v.Resolve(flatFrame(16, c))
	if err != nil {
		t.Fatalf("16x16 frame: Resolve() = %v", err)
	}
	if got := out.Extent(); got.Width != 16 || got.Height != 16 {
		t.Errorf("output extent = %dx%d, want 16x16", got.Width, got.Height)
	}
	if got := out.At(8, 8); got != c {
		t.Errorf("out = %v, want %v; resized history must restart accumulation", got, c)
	}
	if got := v.JitterIndex(); got != 0 {
		t.Errorf("JitterIndex() after resize = %d, want 0", got)
	}
}

func TestResolveMissingBuffersDegrades(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	color := frame.NewColorBuffer(8, 8)
	color.Clear(f32.Vec4{1, 0, 0, 1})

	out, err := v.Resolve(FrameInput{Color: color})
	if err == nil {
		t.Fatal("Resolve() without depth and motion should report an error")
	}
	if out != color {
		t.Error("degraded frame must return the input color buffer")
	}
}

func TestResolveNilColor(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	out, err := v.Resolve(FrameInput{})
	if err == nil {
		t.Fatal("Resolve() with nil color should report an error")
	}
	if out != nil {
		t.Error("Resolve() with nil color should return nil")
	}
}

func TestInvalidateHistoryResetsViews(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	a := f32.Vec4{0.1, 0.2, 0.3, 1}
	for range 2 {
		v.NextJitter()
		if _, err := v.Resolve(flatFrame(8, a)); err != nil {
			t.Fatalf("Resolve() = %v", err)
		}
	}

	p.InvalidateHistory()
	if got := v.JitterIndex(); got != 0 {
		t.Errorf("JitterIndex() after InvalidateHistory = %d, want 0", got)
	}

	// The next frame restarts accumulation from its own color.
	b := f32.Vec4{0.9, 0.1, 0.3, 1}
	v.NextJitter()
	out, err := v.Resolve(flatFrame(8, b))
	if err != nil {
		t.Fatalf("Resolve() after invalidation = %v", err)
	}
	if got := out.At(4, 4); got != b {
		t.Errorf("out = %v, want %v; invalidation must discard the old history", got, b)
	}
}

func TestRemoveView(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	c := f32.Vec4{0.5, 0.5, 0.5, 1}
	v := p.View(7)
	v.NextJitter()
	if _, err := v.Resolve(flatFrame(8, c)); err != nil {
		t.Fatalf("Resolve() = %v", err)
	}

	p.RemoveView(7)

	fresh := p.View(7)
	if fresh == v {
		t.Error("View() after RemoveView returned the stale view")
	}
	if got := fresh.JitterIndex(); got != 0 {
		t.Errorf("fresh view JitterIndex() = %d, want 0", got)
	}
	if _, err := fresh.Resolve(flatFrame(8, c)); err != nil {
		t.Fatalf("Resolve() on recreated view = %v", err)
	}
}

func TestPassOrderTAAThenSMAA(t *testing.T) {
	p, err := New(WithPassOrder(OrderTAAThenSMAA))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.35, 0.55, 0.25, 1}
	in := flatFrame(16, c)
	for i := range 2 {
		v.NextJitter()
		out, err := v.Resolve(in)
		if err != nil {
			t.Fatalf("frame %d: Resolve() = %v", i+1, err)
		}
		if got := out.At(8, 8); !vec4Near(got, c, 1e-5) {
			t.Errorf("frame %d: out = %v, want ~%v", i+1, got, c)
		}
	}
}

func TestConcurrentViews(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	done := make(chan error, 4)
	for id := ViewID(1); id <= 4; id++ {
		go func(id ViewID) {
			v := p.View(id)
			c := f32.Vec4{float32(id) * 0.2, 0.4, 0.6, 1}
			for range 3 {
				v.NextJitter()
				if _, err := v.Resolve(flatFrame(8, c)); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(id)
	}
	for range 4 {
		if err := <-done; err != nil {
			t.Errorf("concurrent Resolve() = %v", err)
		}
	}
}

func TestAcceleratedResolve(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	sentinel := f32.Vec4{0.25, 0.5, 0.75, 1}
	mock := &mockAccelerator{
		name:     "mock-gpu",
		canAccel: AccelSMAA | AccelTAA,
		taaColor: sentinel,
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("RegisterAccelerator() = %v", err)
	}

	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	out, err := v.Resolve(flatFrame(8, f32.Vec4{0.1, 0.1, 0.1, 1}))
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if got := out.At(4, 4); got != sentinel {
		t.Errorf("out = %v, want accelerator sentinel %v", got, sentinel)
	}
	if mock.smaaCalls != 1 || mock.taaCalls != 1 {
		t.Errorf("accelerator calls = (smaa %d, taa %d), want (1, 1)",
			mock.smaaCalls, mock.taaCalls)
	}
}

func TestAcceleratedFallbackToCPU(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	mock := &mockAccelerator{
		name:     "declining-gpu",
		canAccel: AccelSMAA | AccelTAA,
		taaErr:   ErrFallbackToCPU,
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("RegisterAccelerator() = %v", err)
	}

	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.7, 0.3, 0.2, 1}
	out, err := v.Resolve(flatFrame(8, c))
	if err != nil {
		t.Fatalf("Resolve() = %v; declined frames must fall back, not fail", err)
	}
	if mock.taaCalls != 1 {
		t.Errorf("taaCalls = %d, want 1; the accelerator must have been tried", mock.taaCalls)
	}
	if got := out.At(4, 4); got != c {
		t.Errorf("out = %v, want %v from the CPU kernels", got, c)
	}
}

func TestAcceleratedPartialCapabilityUsesCPU(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	// The accelerator covers only the spatial pass while both are enabled,
	// so the whole frame must run on the CPU.
	mock := &mockAccelerator{name: "smaa-only", canAccel: AccelSMAA}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("RegisterAccelerator() = %v", err)
	}

	p, err := New()
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	v := p.View(1)

	c := f32.Vec4{0.2, 0.6, 0.4, 1}
	out, err := v.Resolve(flatFrame(8, c))
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if mock.smaaCalls != 0 {
		t.Errorf("smaaCalls = %d, want 0; mixed GPU/CPU frames are not split", mock.smaaCalls)
	}
	if got := out.At(4, 4); got != c {
		t.Errorf("out = %v, want %v", got, c)
	}
}
