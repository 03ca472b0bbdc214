package antialias

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// This interface is the integration point between the anti-aliasing pipeline
// and GPU frameworks like gogpu. The host application (e.g., gogpu.App)
// implements DeviceHandle and passes it to UseDevice, allowing the GPU
// accelerator to share the host's device instead of creating its own.
//
// Key principle: the pipeline RECEIVES the device from the host, it does NOT
// create one. This enables:
//   - Shared GPU resources between the resolve passes and the host renderer
//   - Zero device creation overhead in this module
//   - Consistent resource management across the stack
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a local
// name for the interface while maintaining full compatibility with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// UseDevice hands the host's GPU device to the registered accelerator.
//
// Call it after the accelerator is registered (typically right after the
// blank import of the gpu package has run) and before the first Resolve.
// Passing a NullDeviceHandle keeps the accelerator on its own device, or on
// the CPU kernels when it has none.
func UseDevice(h DeviceHandle) error {
	if h == nil {
		return nil
	}
	if _, ok := h.(NullDeviceHandle); ok {
		return nil
	}
	return SetAcceleratorDeviceProvider(h)
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only resolving where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
