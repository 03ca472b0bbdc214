//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// Uniform blocks are 32 bytes so every stage layout can declare the same
// minimum binding size.
const paramsBindingSize = 32

// Flag bits of taaParams. Must match the FLAG_* constants in shaders/taa.wgsl.
const (
	taaFlagTonemap = 1 << iota
	taaFlagDepthReject
	taaFlagReset
	taaFlagWriteDepth
)

// taaParams is the uniform block of the temporal resolve stage.
// Field order and offsets must match Params in shaders/taa.wgsl.
type taaParams struct {
	width           uint32
	height          uint32
	flags           uint32
	motionThreshold float32
	defaultBlend    float32
	minBlend        float32
	depthThreshold  float32
}

func newTAAParams(width, height int, cfg taa.Config, reset, writeDepth bool) taaParams {
	p := taaParams{
		width:           uint32(width),
		height:          uint32(height),
		motionThreshold: cfg.MotionThreshold,
		defaultBlend:    cfg.DefaultHistoryBlendRate,
		minBlend:        cfg.MinHistoryBlendRate,
		depthThreshold:  cfg.DepthRejectionThreshold,
	}
	if cfg.Tonemap {
		p.flags |= taaFlagTonemap
	}
	if cfg.DepthRejection {
		p.flags |= taaFlagDepthReject
	}
	if reset {
		p.flags |= taaFlagReset
	}
	if writeDepth {
		p.flags |= taaFlagWriteDepth
	}
	return p
}

// toBytes serializes the params to the shader's uniform layout.
func (p taaParams) toBytes() []byte {
	buf := make([]byte, paramsBindingSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.width)
	le.PutUint32(buf[4:8], p.height)
	le.PutUint32(buf[8:12], p.flags)
	le.PutUint32(buf[12:16], math.Float32bits(p.motionThreshold))
	le.PutUint32(buf[16:20], math.Float32bits(p.defaultBlend))
	le.PutUint32(buf[20:24], math.Float32bits(p.minBlend))
	le.PutUint32(buf[24:28], math.Float32bits(p.depthThreshold))
	// buf[28:32] is padding.
	return buf
}

// smaaParams is the uniform block shared by the three SMAA stages.
// Field order and offsets must match Params in shaders/smaa_edges.wgsl,
// shaders/smaa_weights.wgsl and shaders/smaa_blend.wgsl.
type smaaParams struct {
	width              uint32
	height             uint32
	threshold          float32
	contrastFactor     float32
	maxSearchSteps     uint32
	maxSearchStepsDiag uint32
	cornerRounding     uint32
}

func newSMAAParams(width, height int, cfg smaa.Config) smaaParams {
	return smaaParams{
		width:              uint32(width),
		height:             uint32(height),
		threshold:          cfg.Threshold,
		contrastFactor:     cfg.LocalContrastAdaptationFactor,
		maxSearchSteps:     uint32(cfg.MaxSearchSteps),
		maxSearchStepsDiag: uint32(cfg.MaxSearchStepsDiag),
		cornerRounding:     uint32(cfg.CornerRounding),
	}
}

// toBytes serializes the params to the shader's uniform layout.
func (p smaaParams) toBytes() []byte {
	buf := make([]byte, paramsBindingSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.width)
	le.PutUint32(buf[4:8], p.height)
	le.PutUint32(buf[8:12], math.Float32bits(p.threshold))
	le.PutUint32(buf[12:16], math.Float32bits(p.contrastFactor))
	le.PutUint32(buf[16:20], p.maxSearchSteps)
	le.PutUint32(buf[20:24], p.maxSearchStepsDiag)
	le.PutUint32(buf[24:28], p.cornerRounding)
	// buf[28:32] is padding.
	return buf
}

// floatBytes packs float32 texel data into the little-endian byte layout
// storage buffers expect.
func floatBytes(src []float32) []byte {
	buf := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// readFloats unpacks a readback into dst. raw must hold at least
// len(dst)*4 bytes.
func readFloats(dst []float32, raw []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
}
