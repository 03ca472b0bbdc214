package antialias

import (
	"errors"
	"sync"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this frame.
// The caller should transparently fall back to the CPU kernels.
var ErrFallbackToCPU = errors.New("antialias: falling back to CPU resolve")

// AcceleratedOp describes operation types for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelSMAA represents the three-pass SMAA pipeline.
	AccelSMAA AcceleratedOp = 1 << iota

	// AccelTAA represents the temporal resolve pass.
	AccelTAA
)

// GPUAccelerator is an optional GPU execution provider.
//
// When registered via RegisterAccelerator, View.Resolve tries GPU execution
// first for supported passes. If the accelerator returns ErrFallbackToCPU
// or any error, the frame transparently falls back to the CPU kernels.
//
// Implementations are provided by GPU backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/gogpu/antialias/gpu" // enables GPU resolve
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu-compute").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given pass.
	// This is a fast check used to skip GPU entirely for unsupported passes.
	CanAccelerate(op AcceleratedOp) bool

	// ProcessSMAA runs edge detection, blending-weight calculation, and
	// neighborhood blending over src, writing the result to dst.
	// Returns ErrFallbackToCPU if the pass cannot run on the GPU.
	ProcessSMAA(dst, src *frame.ColorBuffer, cfg smaa.Config) error

	// ResolveTAA runs the temporal resolve over in, writing the blended
	// color to output and the new accumulation to in.HistoryOut.
	// Returns ErrFallbackToCPU if the pass cannot run on the GPU.
	ResolveTAA(output *frame.ColorBuffer, in taa.Input, cfg taa.Config) error
}

// DeviceProviderAware is an optional interface for accelerators that can share
// GPU resources with an external provider (e.g., gogpu window).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU execution.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    antialias.RegisterAccelerator(NewComputeAccelerator())
//	}
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("antialias: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Accelerator returns the currently registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
