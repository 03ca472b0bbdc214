// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/lut"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

//go:embed shaders/taa.wgsl
var shaderTAA string

//go:embed shaders/smaa_edges.wgsl
var shaderSMAAEdges string

//go:embed shaders/smaa_weights.wgsl
var shaderSMAAWeights string

//go:embed shaders/smaa_blend.wgsl
var shaderSMAABlend string

const (
	// resolveWGSize is the workgroup edge length; every shader declares
	// @workgroup_size(8, 8).
	resolveWGSize = 8

	// resolveFenceTimeout caps how long a dispatch may take before the
	// engine gives up on the GPU.
	resolveFenceTimeout = 5 * time.Second
)

// resolveStage identifies one compute pipeline of the engine.
type resolveStage int

const (
	stageTAA resolveStage = iota
	stageEdges
	stageWeights
	stageBlend
	stageCount
)

func (s resolveStage) String() string {
	switch s {
	case stageTAA:
		return "taa"
	case stageEdges:
		return "smaa_edges"
	case stageWeights:
		return "smaa_weights"
	case stageBlend:
		return "smaa_blend"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// resolveEngine owns the compute pipelines of the anti-aliasing resolves:
// one TAA stage and the three SMAA stages. Frame data travels through
// storage buffers in the same float32 layout the CPU frame buffers use, so
// one upload and one readback bracket each dispatch.
//
// The lookup tables of the weight stage are uploaded once at Init and live
// until Close.
type resolveEngine struct {
	mu sync.RWMutex

	// device is the HAL device providing GPU resource creation.
	device hal.Device

	// queue is the HAL queue for command submission and buffer transfers.
	queue hal.Queue

	// pipelines are the compiled compute pipelines, one per stage.
	pipelines [stageCount]hal.ComputePipeline

	// pipelineLayouts are the pipeline layouts, one per stage.
	pipelineLayouts [stageCount]hal.PipelineLayout

	// bgLayouts are the bind group layouts, one per stage.
	bgLayouts [stageCount]hal.BindGroupLayout

	// shaderModules are the compiled shader modules, one per stage.
	shaderModules [stageCount]hal.ShaderModule

	// shaderSources are the embedded WGSL sources, indexed by stage.
	shaderSources [stageCount]string

	// areaBuf and searchBuf hold the SMAA lookup tables.
	areaBuf   hal.Buffer
	searchBuf hal.Buffer

	// initialized indicates whether shaders have been compiled.
	initialized bool
}

// newResolveEngine creates an engine attached to the given HAL device and
// queue. The engine must be initialized with Init before dispatching.
func newResolveEngine(device hal.Device, queue hal.Queue) *resolveEngine {
	e := &resolveEngine{
		device: device,
		queue:  queue,
	}
	e.shaderSources = [stageCount]string{
		stageTAA:     shaderTAA,
		stageEdges:   shaderSMAAEdges,
		stageWeights: shaderSMAAWeights,
		stageBlend:   shaderSMAABlend,
	}
	return e
}

// stageBindGroupLayoutEntries returns the bind group layout entries for a
// stage. These match the @group(0) @binding(N) annotations in the
// corresponding WGSL shader exactly.
func stageBindGroupLayoutEntries(stage resolveStage) []gputypes.BindGroupLayoutEntry {
	// Every stage has the params uniform at binding 0.
	paramsUniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: paramsBindingSize,
		},
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	switch stage {
	case stageTAA:
		// @binding(1) storage(read) color
		// @binding(2) storage(read) depth
		// @binding(3) storage(read) motion
		// @binding(4) storage(read) history
		// @binding(5) storage(read) depth_history
		// @binding(6) storage(read_write) output
		// @binding(7) storage(read_write) history_out
		// @binding(8) storage(read_write) depth_history_out
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRO(2), storageRO(3),
			storageRO(4), storageRO(5),
			storageRW(6), storageRW(7), storageRW(8),
		}

	case stageEdges:
		// @binding(1) storage(read) src
		// @binding(2) storage(read_write) edges
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRW(2),
		}

	case stageWeights:
		// @binding(1) storage(read) edges
		// @binding(2) storage(read) area_table
		// @binding(3) storage(read) search_table
		// @binding(4) storage(read_write) weights
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRO(2), storageRO(3), storageRW(4),
		}

	case stageBlend:
		// @binding(1) storage(read) src
		// @binding(2) storage(read) weights
		// @binding(3) storage(read_write) output
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRO(2), storageRW(3),
		}

	default:
		return nil
	}
}

// Init compiles all shaders and creates the pipelines and lookup table
// buffers. Safe to call more than once.
func (e *resolveEngine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	for i := resolveStage(0); i < stageCount; i++ {
		src := e.shaderSources[i]
		if src == "" {
			return fmt.Errorf("resolve compute: missing shader source for stage %s", i)
		}

		stageName := "resolve_" + i.String()

		// 1. Compile WGSL to SPIR-V.
		spirvBytes, err := naga.Compile(src)
		if err != nil {
			e.destroyPartialInit(i)
			return fmt.Errorf("resolve compute: compile shader for %s: %w", i, err)
		}
		code := spirvWords(spirvBytes)

		// 2. Create shader module.
		module, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  stageName,
			Source: hal.ShaderSource{SPIRV: code},
		})
		if err != nil {
			e.destroyPartialInit(i)
			return fmt.Errorf("resolve compute: create shader module for %s: %w", i, err)
		}
		e.shaderModules[i] = module

		// 3. Create bind group layout for this stage's bindings.
		entries := stageBindGroupLayoutEntries(i)
		bgLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   stageName + "_bgl",
			Entries: entries,
		})
		if err != nil {
			e.destroyPartialInit(i + 1) // module was already stored
			return fmt.Errorf("resolve compute: create bind group layout for %s: %w", i, err)
		}
		e.bgLayouts[i] = bgLayout

		// 4. Create pipeline layout.
		pipelineLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            stageName + "_pl",
			BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
		})
		if err != nil {
			e.destroyPartialInit(i + 1)
			return fmt.Errorf("resolve compute: create pipeline layout for %s: %w", i, err)
		}
		e.pipelineLayouts[i] = pipelineLayout

		// 5. Create compute pipeline.
		pipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  stageName,
			Layout: pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: "main",
			},
		})
		if err != nil {
			e.destroyPartialInit(i + 1)
			return fmt.Errorf("resolve compute: create compute pipeline for %s: %w", i, err)
		}
		e.pipelines[i] = pipeline

		slogger().Debug("resolve compute: pipeline created",
			"stage", i.String(),
			"bindings", len(entries),
			"shader_bytes", len(src))
	}

	if err := e.uploadTables(); err != nil {
		e.destroyPartialInit(stageCount)
		return err
	}

	slogger().Info("resolve compute: all pipelines initialized",
		"stages", int(stageCount))

	e.initialized = true
	return nil
}

// uploadTables creates the lookup table buffers of the weight stage and
// fills them from the shared generated tables.
func (e *resolveEngine) uploadTables() error {
	tables := lut.Default()

	area := floatBytes(tables.AreaTable())
	areaBuf, err := e.createBuffer("resolve_area_lut",
		uint64(len(area)), gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	e.queue.WriteBuffer(areaBuf, 0, area)
	e.areaBuf = areaBuf

	search := floatBytes(tables.SearchTable())
	searchBuf, err := e.createBuffer("resolve_search_lut",
		uint64(len(search)), gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		e.device.DestroyBuffer(e.areaBuf)
		e.areaBuf = nil
		return err
	}
	e.queue.WriteBuffer(searchBuf, 0, search)
	e.searchBuf = searchBuf
	return nil
}

func (e *resolveEngine) destroyPartialInit(upTo resolveStage) {
	for j := resolveStage(0); j < upTo; j++ {
		if e.pipelines[j] != nil {
			e.device.DestroyComputePipeline(e.pipelines[j])
			e.pipelines[j] = nil
		}
		if e.pipelineLayouts[j] != nil {
			e.device.DestroyPipelineLayout(e.pipelineLayouts[j])
			e.pipelineLayouts[j] = nil
		}
		if e.bgLayouts[j] != nil {
			e.device.DestroyBindGroupLayout(e.bgLayouts[j])
			e.bgLayouts[j] = nil
		}
		if e.shaderModules[j] != nil {
			e.device.DestroyShaderModule(e.shaderModules[j])
			e.shaderModules[j] = nil
		}
	}
}

// Close releases all GPU resources held by the engine. After Close, the
// engine must be re-initialized with Init before use.
func (e *resolveEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.destroyPartialInit(stageCount)
	if e.areaBuf != nil {
		e.device.DestroyBuffer(e.areaBuf)
		e.areaBuf = nil
	}
	if e.searchBuf != nil {
		e.device.DestroyBuffer(e.searchBuf)
		e.searchBuf = nil
	}
	e.initialized = false
}

func (e *resolveEngine) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	const minBufSize = 4
	if size < minBufSize {
		size = minBufSize
	}
	buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve compute: create buffer %s: %w", label, err)
	}
	return buf, nil
}

// frameBuffers tracks per-dispatch buffers so a single destroy releases
// them all.
type frameBuffers struct {
	engine *resolveEngine
	bufs   []hal.Buffer
}

func (f *frameBuffers) create(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := f.engine.createBuffer(label, size, usage)
	if err != nil {
		return nil, err
	}
	f.bufs = append(f.bufs, buf)
	return buf, err
}

func (f *frameBuffers) destroy() {
	for _, b := range f.bufs {
		f.engine.device.DestroyBuffer(b)
	}
	f.bufs = nil
}

// dispatchResources tracks per-dispatch bind groups, command buffer and
// fence for cleanup.
type dispatchResources struct {
	device     hal.Device
	bindGroups []hal.BindGroup
	cmdBuf     hal.CommandBuffer
	fence      hal.Fence
}

// cleanup destroys all tracked per-dispatch resources.
func (r *dispatchResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
	}
	for _, g := range r.bindGroups {
		r.device.DestroyBindGroup(g)
	}
}

// enginePass pairs a stage with the buffer bindings of one dispatch.
type enginePass struct {
	stage   resolveStage
	entries []gputypes.BindGroupEntry
}

// bufferCopy describes a post-pass copy into a staging buffer.
type bufferCopy struct {
	src  hal.Buffer
	dst  hal.Buffer
	size uint64
}

func bufferEntry(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding: binding,
		Resource: gputypes.BufferBinding{
			Buffer: buf.NativeHandle(),
			Offset: 0,
			Size:   0, // 0 = entire buffer
		},
	}
}

// encodePasses records the compute passes and staging copies into a single
// command buffer. All passes dispatch one thread per texel of a w x h frame.
func (e *resolveEngine) encodePasses(res *dispatchResources, label string, w, h int, passes []enginePass, copies []bufferCopy) error {
	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return fmt.Errorf("resolve compute: create command encoder: %w", err)
	}

	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("resolve compute: begin encoding: %w", err)
	}

	wgX := (uint32(w) + resolveWGSize - 1) / resolveWGSize
	wgY := (uint32(h) + resolveWGSize - 1) / resolveWGSize

	for _, p := range passes {
		bg, bgErr := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "resolve_" + p.stage.String() + "_bg",
			Layout:  e.bgLayouts[p.stage],
			Entries: p.entries,
		})
		if bgErr != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("resolve compute: create bind group for %s: %w", p.stage, bgErr)
		}
		res.bindGroups = append(res.bindGroups, bg)

		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
			Label: "resolve_" + p.stage.String(),
		})
		pass.SetPipeline(e.pipelines[p.stage])
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(wgX, wgY, 1)
		pass.End()

		slogger().Debug("resolve compute: dispatched stage",
			"stage", p.stage.String(),
			"workgroups_x", wgX,
			"workgroups_y", wgY)
	}

	for _, c := range copies {
		encoder.CopyBufferToBuffer(c.src, c.dst, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: c.size},
		})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("resolve compute: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf
	return nil
}

// submitAndWait submits the command buffer and waits for GPU completion.
func (e *resolveEngine) submitAndWait(res *dispatchResources) error {
	fence, err := e.device.CreateFence()
	if err != nil {
		return fmt.Errorf("resolve compute: create fence: %w", err)
	}
	res.fence = fence

	if err := e.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("resolve compute: submit: %w", err)
	}

	ok, err := e.device.Wait(fence, 1, resolveFenceTimeout)
	if err != nil {
		return fmt.Errorf("resolve compute: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("resolve compute: GPU timeout after %v", resolveFenceTimeout)
	}
	return nil
}

// processSMAA runs the three SMAA stages on src and reads the blended frame
// back into dst. The edge and weight textures stay on the GPU between
// passes; only the final output crosses back.
func (e *resolveEngine) processSMAA(dst, src *frame.ColorBuffer, cfg smaa.Config) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return fmt.Errorf("resolve compute: engine not initialized, call Init() first")
	}
	if dst.Extent() != src.Extent() {
		return fmt.Errorf("resolve compute: smaa: %w: dst %dx%d, src %dx%d",
			frame.ErrExtentMismatch, dst.Width(), dst.Height(), src.Width(), src.Height())
	}

	w, h := src.Width(), src.Height()
	colorBytes := uint64(w) * uint64(h) * 16

	storageCPU := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	storageGPU := gputypes.BufferUsageStorage
	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	storageOut := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	stagingUse := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	fb := &frameBuffers{engine: e}
	defer fb.destroy()

	paramsBuf, err := fb.create("smaa_params", paramsBindingSize, uniformCPU)
	if err != nil {
		return err
	}
	srcBuf, err := fb.create("smaa_src", colorBytes, storageCPU)
	if err != nil {
		return err
	}
	edgesBuf, err := fb.create("smaa_edges", colorBytes, storageGPU)
	if err != nil {
		return err
	}
	weightsBuf, err := fb.create("smaa_weights", colorBytes, storageGPU)
	if err != nil {
		return err
	}
	outBuf, err := fb.create("smaa_output", colorBytes, storageOut)
	if err != nil {
		return err
	}
	stagingBuf, err := fb.create("smaa_staging", colorBytes, stagingUse)
	if err != nil {
		return err
	}

	e.queue.WriteBuffer(paramsBuf, 0, newSMAAParams(w, h, cfg).toBytes())
	e.queue.WriteBuffer(srcBuf, 0, floatBytes(src.Pix()))

	passes := []enginePass{
		{stageEdges, []gputypes.BindGroupEntry{
			bufferEntry(0, paramsBuf),
			bufferEntry(1, srcBuf),
			bufferEntry(2, edgesBuf),
		}},
		{stageWeights, []gputypes.BindGroupEntry{
			bufferEntry(0, paramsBuf),
			bufferEntry(1, edgesBuf),
			bufferEntry(2, e.areaBuf),
			bufferEntry(3, e.searchBuf),
			bufferEntry(4, weightsBuf),
		}},
		{stageBlend, []gputypes.BindGroupEntry{
			bufferEntry(0, paramsBuf),
			bufferEntry(1, srcBuf),
			bufferEntry(2, weightsBuf),
			bufferEntry(3, outBuf),
		}},
	}
	copies := []bufferCopy{
		{outBuf, stagingBuf, colorBytes},
	}

	res := &dispatchResources{device: e.device}
	defer res.cleanup()

	if err := e.encodePasses(res, "smaa_resolve", w, h, passes, copies); err != nil {
		return err
	}
	if err := e.submitAndWait(res); err != nil {
		return err
	}

	readback := make([]byte, colorBytes)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("resolve compute: read smaa output: %w", err)
	}
	readFloats(dst.Pix(), readback)

	slogger().Debug("resolve compute: smaa resolved", "width", w, "height", h)
	return nil
}

// resolveTAA runs the temporal resolve stage and reads the blended frame
// and the new accumulation back into output and in.HistoryOut.
func (e *resolveEngine) resolveTAA(output *frame.ColorBuffer, in taa.Input, cfg taa.Config) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return fmt.Errorf("resolve compute: engine not initialized, call Init() first")
	}
	if in.Color == nil || in.Depth == nil || in.Motion == nil ||
		in.History == nil || in.HistoryOut == nil {
		return fmt.Errorf("resolve compute: taa: missing input buffer")
	}
	extent := output.Extent()
	if in.Color.Extent() != extent || in.Depth.Extent() != extent ||
		in.Motion.Extent() != extent || in.History.Extent() != extent ||
		in.HistoryOut.Extent() != extent {
		return fmt.Errorf("resolve compute: taa: %w", frame.ErrExtentMismatch)
	}
	if cfg.DepthRejection && (in.DepthHistory == nil || in.DepthHistoryOut == nil) {
		return fmt.Errorf("resolve compute: taa: depth rejection enabled without depth history")
	}

	w, h := output.Width(), output.Height()
	texels := uint64(w) * uint64(h)
	colorBytes := texels * 16
	depthBytes := texels * 4
	motionBytes := texels * 8

	readDepth := cfg.DepthRejection
	writeDepth := in.DepthHistoryOut != nil

	storageCPU := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	storageOut := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	stagingUse := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	// The depth history pair binds minimum-size placeholders when unused;
	// the shader flags keep it from touching them then.
	depthHistSize := uint64(0)
	if readDepth {
		depthHistSize = depthBytes
	}
	depthOutSize := uint64(0)
	if writeDepth {
		depthOutSize = depthBytes
	}

	fb := &frameBuffers{engine: e}
	defer fb.destroy()

	paramsBuf, err := fb.create("taa_params", paramsBindingSize, uniformCPU)
	if err != nil {
		return err
	}
	colorBuf, err := fb.create("taa_color", colorBytes, storageCPU)
	if err != nil {
		return err
	}
	depthBuf, err := fb.create("taa_depth", depthBytes, storageCPU)
	if err != nil {
		return err
	}
	motionBuf, err := fb.create("taa_motion", motionBytes, storageCPU)
	if err != nil {
		return err
	}
	historyBuf, err := fb.create("taa_history", colorBytes, storageCPU)
	if err != nil {
		return err
	}
	depthHistBuf, err := fb.create("taa_depth_history", depthHistSize, storageCPU)
	if err != nil {
		return err
	}
	outBuf, err := fb.create("taa_output", colorBytes, storageOut)
	if err != nil {
		return err
	}
	histOutBuf, err := fb.create("taa_history_out", colorBytes, storageOut)
	if err != nil {
		return err
	}
	depthOutBuf, err := fb.create("taa_depth_history_out", depthOutSize, storageOut)
	if err != nil {
		return err
	}
	stagingOut, err := fb.create("taa_staging_output", colorBytes, stagingUse)
	if err != nil {
		return err
	}
	stagingHist, err := fb.create("taa_staging_history", colorBytes, stagingUse)
	if err != nil {
		return err
	}
	var stagingDepth hal.Buffer
	if writeDepth {
		stagingDepth, err = fb.create("taa_staging_depth", depthBytes, stagingUse)
		if err != nil {
			return err
		}
	}

	e.queue.WriteBuffer(paramsBuf, 0, newTAAParams(w, h, cfg, in.Reset, writeDepth).toBytes())
	e.queue.WriteBuffer(colorBuf, 0, floatBytes(in.Color.Pix()))
	e.queue.WriteBuffer(depthBuf, 0, floatBytes(in.Depth.Pix()))
	e.queue.WriteBuffer(motionBuf, 0, floatBytes(in.Motion.Pix()))
	e.queue.WriteBuffer(historyBuf, 0, floatBytes(in.History.Pix()))
	if readDepth {
		e.queue.WriteBuffer(depthHistBuf, 0, floatBytes(in.DepthHistory.Pix()))
	}

	passes := []enginePass{
		{stageTAA, []gputypes.BindGroupEntry{
			bufferEntry(0, paramsBuf),
			bufferEntry(1, colorBuf),
			bufferEntry(2, depthBuf),
			bufferEntry(3, motionBuf),
			bufferEntry(4, historyBuf),
			bufferEntry(5, depthHistBuf),
			bufferEntry(6, outBuf),
			bufferEntry(7, histOutBuf),
			bufferEntry(8, depthOutBuf),
		}},
	}
	copies := []bufferCopy{
		{outBuf, stagingOut, colorBytes},
		{histOutBuf, stagingHist, colorBytes},
	}
	if writeDepth {
		copies = append(copies, bufferCopy{depthOutBuf, stagingDepth, depthBytes})
	}

	res := &dispatchResources{device: e.device}
	defer res.cleanup()

	if err := e.encodePasses(res, "taa_resolve", w, h, passes, copies); err != nil {
		return err
	}
	if err := e.submitAndWait(res); err != nil {
		return err
	}

	readback := make([]byte, colorBytes)
	if err := e.queue.ReadBuffer(stagingOut, 0, readback); err != nil {
		return fmt.Errorf("resolve compute: read taa output: %w", err)
	}
	readFloats(output.Pix(), readback)

	if err := e.queue.ReadBuffer(stagingHist, 0, readback); err != nil {
		return fmt.Errorf("resolve compute: read taa history: %w", err)
	}
	readFloats(in.HistoryOut.Pix(), readback)

	if writeDepth {
		depthBack := make([]byte, depthBytes)
		if err := e.queue.ReadBuffer(stagingDepth, 0, depthBack); err != nil {
			return fmt.Errorf("resolve compute: read taa depth history: %w", err)
		}
		readFloats(in.DepthHistoryOut.Pix(), depthBack)
	}

	slogger().Debug("resolve compute: taa resolved",
		"width", w, "height", h, "reset", in.Reset)
	return nil
}

// spirvWords repacks compiler output into the u32 stream the HAL expects.
func spirvWords(raw []byte) []uint32 {
	code := make([]uint32, len(raw)/4)
	for i := range code {
		code[i] = uint32(raw[i*4]) |
			uint32(raw[i*4+1])<<8 |
			uint32(raw[i*4+2])<<16 |
			uint32(raw[i*4+3])<<24
	}
	return code
}
