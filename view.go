package antialias

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/framegraph"
	"github.com/gogpu/antialias/jitter"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// View is the per-view anti-aliasing state: the jitter sequence, the frame
// graph, and the scratch buffers of the frame in flight. A View is created by
// Pipeline.View and is not safe for concurrent use; different views may
// resolve frames concurrently.
type View struct {
	id ViewID
	p  *Pipeline

	jitter *jitter.Sequence
	smaa   *smaa.Pipeline
	taa    *taa.Node
	graph  *framegraph.Graph
	output framegraph.Resource

	extent frame.Extent

	// Scratch targets for the accelerated path.
	gpuSMAA *frame.ColorBuffer
	gpuTAA  *frame.ColorBuffer
}

// FrameInput carries the rasterizer products of one frame.
type FrameInput struct {
	// Color is the rendered frame, drawn with this frame's jitter offset.
	Color *frame.ColorBuffer

	// Depth and Motion are required when the temporal pass is enabled.
	Depth  *frame.DepthBuffer
	Motion *frame.MotionBuffer

	// ResetHistory discards the view's accumulation and restarts the jitter
	// sequence. Set it on camera cuts and scene loads.
	ResetHistory bool
}

// ID returns the view identifier.
func (v *View) ID() ViewID { return v.id }

// NextJitter returns this frame's offset in pixel units and steps the
// sequence to the next term. Call it once per frame; either fold the returned
// offset into the projection yourself, or use ApplyJitter before calling it.
func (v *View) NextJitter() (dx, dy float32) {
	return v.jitter.Next()
}

// JitterOffset returns the current jitter offset without advancing.
func (v *View) JitterOffset() f32.Vec2 {
	return v.jitter.Offset()
}

// JitterIndex returns the current position in the jitter sequence.
func (v *View) JitterIndex() uint32 {
	return v.jitter.Index()
}

// ApplyJitter perturbs a row-major projection matrix by the current offset
// without consuming it; a frame that uses it still calls NextJitter once to
// step the sequence. It reports false for matrices that do not look like
// perspective projections.
func (v *View) ApplyJitter(m *f32.Mat4, width, height float32) bool {
	return jitter.JitterProjection(m, v.jitter.Offset(), width, height)
}

// Resolve runs the enabled passes over the frame and returns the final
// anti-aliased color. On a degraded frame (missing buffer, extent mismatch,
// graph failure) it returns the input color untouched together with the
// error, so callers always have something to present.
func (v *View) Resolve(in FrameInput) (*frame.ColorBuffer, error) {
	if in.Color == nil {
		return nil, fmt.Errorf("antialias: resolve: nil color buffer")
	}
	extent := in.Color.Extent()
	if extent.IsZero() {
		return in.Color, fmt.Errorf("antialias: resolve: zero extent")
	}
	if v.taa != nil && (in.Depth == nil || in.Motion == nil) {
		err := fmt.Errorf("antialias: resolve: temporal pass requires depth and motion buffers")
		Logger().Warn("antialias: frame degraded to pass-through", "view", v.id, "err", err)
		return in.Color, err
	}

	if extent != v.extent {
		if !v.extent.IsZero() {
			// Resolution change: history reallocates inside Acquire, the
			// jitter sequence restarts here.
			v.jitter.Reset()
		}
		v.extent = extent
	}
	if in.ResetHistory {
		v.p.history.Invalidate(v.id)
		v.jitter.Reset()
	}

	out, err := v.execute(in)
	if err != nil {
		Logger().Warn("antialias: frame degraded to pass-through", "view", v.id, "err", err)
		return in.Color, err
	}
	if v.taa != nil {
		v.p.history.Flip(v.id)
	}
	return out, nil
}

func (v *View) execute(in FrameInput) (*frame.ColorBuffer, error) {
	if out, ok := v.tryAccelerated(in); ok {
		return out, nil
	}

	ctx := framegraph.NewExecContext()
	ctx.Set(ResourceColor, in.Color)
	if in.Depth != nil {
		ctx.Set(ResourceDepth, in.Depth)
	}
	if in.Motion != nil {
		ctx.Set(ResourceVelocity, in.Motion)
	}
	if err := v.graph.Execute(ctx); err != nil {
		return nil, err
	}
	return ctx.Color(v.output)
}

// tryAccelerated executes the frame on the registered GPU accelerator.
// It reports false when no accelerator covers the enabled passes or when GPU
// execution failed and the CPU kernels should run instead.
func (v *View) tryAccelerated(in FrameInput) (*frame.ColorBuffer, bool) {
	a := Accelerator()
	if a == nil || (v.smaa == nil && v.taa == nil) {
		return nil, false
	}
	if v.smaa != nil && !a.CanAccelerate(AccelSMAA) {
		return nil, false
	}
	if v.taa != nil && !a.CanAccelerate(AccelTAA) {
		return nil, false
	}

	out, err := v.resolveGPU(a, in)
	if err != nil {
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("antialias: accelerator declined frame", "view", v.id)
		} else {
			Logger().Warn("antialias: gpu resolve failed, using cpu kernels",
				"view", v.id, "err", err)
		}
		return nil, false
	}
	return out, true
}

func (v *View) resolveGPU(a GPUAccelerator, in FrameInput) (*frame.ColorBuffer, error) {
	extent := in.Color.Extent()
	if v.smaa != nil && (v.gpuSMAA == nil || v.gpuSMAA.Extent() != extent) {
		v.gpuSMAA = frame.NewColorBuffer(extent.Width, extent.Height)
	}
	if v.taa != nil && (v.gpuTAA == nil || v.gpuTAA.Extent() != extent) {
		v.gpuTAA = frame.NewColorBuffer(extent.Width, extent.Height)
	}

	runSMAA := func(src *frame.ColorBuffer) (*frame.ColorBuffer, error) {
		if err := a.ProcessSMAA(v.gpuSMAA, src, v.smaa.Config()); err != nil {
			return nil, err
		}
		return v.gpuSMAA, nil
	}
	runTAA := func(src *frame.ColorBuffer) (*frame.ColorBuffer, error) {
		tex, err := v.p.history.Acquire(v.id, extent)
		if err != nil {
			return nil, err
		}
		ti := taa.Input{
			Color:      src,
			Depth:      in.Depth,
			Motion:     in.Motion,
			History:    tex.Read,
			HistoryOut: tex.Write,
			Reset:      tex.Reset,
		}
		if v.p.cfg.taaConfig.DepthRejection {
			dtex, err := v.p.history.AcquireDepth(v.id)
			if err != nil {
				return nil, err
			}
			ti.DepthHistory = dtex.Read
			ti.DepthHistoryOut = dtex.Write
		}
		if err := a.ResolveTAA(v.gpuTAA, ti, v.p.cfg.taaConfig); err != nil {
			return nil, err
		}
		return v.gpuTAA, nil
	}

	cur := in.Color
	var err error
	switch {
	case v.smaa != nil && v.taa != nil && v.p.cfg.order == OrderTAAThenSMAA:
		if cur, err = runTAA(cur); err != nil {
			return nil, err
		}
		return runSMAA(cur)
	case v.smaa != nil && v.taa != nil:
		if cur, err = runSMAA(cur); err != nil {
			return nil, err
		}
		return runTAA(cur)
	case v.smaa != nil:
		return runSMAA(cur)
	default:
		return runTAA(cur)
	}
}
