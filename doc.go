// Package antialias provides real-time anti-aliasing for renderers in Go.
//
// # Overview
//
// antialias smooths rasterization artifacts with two cooperating passes: a
// spatial pass (SMAA: edge detection, blending-weight calculation against
// precomputed lookup tables, neighborhood blending) and a temporal pass (TAA:
// sub-pixel jittered sampling accumulated across frames with history
// reprojection and rejection). Both passes run as nodes of a small render
// graph that orders work from declared reads and writes. The module is part
// of the GoGPU ecosystem and exchanges frames through float32 buffers.
//
// # Quick Start
//
//	import "github.com/gogpu/antialias"
//
//	p, err := antialias.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	view := p.View(1)
//
//	// Each frame: jitter the projection, render, then resolve.
//	dx, dy := view.NextJitter()
//	renderScene(dx, dy) // produces color, depth, motion
//	out, err := view.Resolve(antialias.FrameInput{
//		Color:  color,
//		Depth:  depth,
//		Motion: motion,
//	})
//
// # Architecture
//
// The library is organized into:
//   - Public API: Pipeline, View, Config options, FrameInput
//   - frame: shared buffer types (color, depth, motion) and sampling
//   - jitter: Halton sub-pixel offset sequences
//   - smaa, taa: the pass kernels and their render-graph nodes
//   - history: per-view ping-pong accumulation buffers
//   - lut: procedural SMAA area/search table generation
//   - framegraph: dependency-ordered pass scheduling
//   - internal/gpu: wgpu compute execution of the same kernels
//
// # Renderers
//
// The pure-Go kernels are always available and serve as the reference
// implementation. GPU execution via gogpu/wgpu compute shaders is enabled by
// a blank import:
//
//	import _ "github.com/gogpu/antialias/gpu" // enables GPU resolve
//
// When the GPU path is unavailable or fails, frames transparently fall back
// to the CPU kernels.
//
// # Coordinate System
//
// Buffers use standard image coordinates: origin (0,0) at top-left, X
// increases right, Y increases down. Motion vectors are UV offsets from the
// current frame back to the previous one. Depth is reverse-Z (larger values
// are closer). Jitter offsets are in pixel units in [-0.5, 0.5].
package antialias

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
