//go:build !nogpu

// Package gpu runs the anti-aliasing resolves on a GPU compute queue.
//
// This is an internal package behind the antialias.GPUAccelerator interface.
// It targets wgpu/hal directly (zero CGO), so the same code drives Vulkan,
// Metal, and DX12 depending on the platform.
//
// # Architecture Overview
//
// The package builds four compute pipelines, one per resolve stage:
//
//	taa           temporal blend with history reprojection and clipping
//	smaa_edges    luma edge detection
//	smaa_weights  blending-weight calculation against the area/search tables
//	smaa_blend    neighborhood blending
//
// Shaders are written in WGSL, compiled to SPIR-V through gogpu/naga at
// pipeline creation, and dispatched in 8x8 workgroups. Frame buffers cross
// the PCIe bus as storage buffers holding the same float32 layouts the CPU
// kernels use, so the two paths are interchangeable per frame.
//
// The three SMAA stages submit as one command buffer; the intermediate edge
// and weight textures live only on the GPU. The TAA stage reads back both
// the resolved color and the new history, which the caller's history manager
// owns.
//
// ComputeAccelerator can run on a device shared by the host application
// (SetDeviceProvider) or open its own adapter on first use. Failures retreat
// to the CPU kernels through antialias.ErrFallbackToCPU and never take the
// frame down.
package gpu
