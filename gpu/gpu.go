//go:build !nogpu

// Package gpu registers the compute accelerator for hardware-accelerated
// anti-aliasing resolves.
//
// Import this package to run the SMAA passes and the TAA resolve as
// wgpu/hal compute dispatches instead of the CPU kernels. Registration is
// lazy: no GPU device is created until the first resolve, or until
// SetDeviceProvider hands over one from the host.
//
// If GPU initialization fails (no Vulkan/Metal/DX12 available), resolving
// transparently falls back to the CPU kernels.
//
// Usage:
//
//	import _ "github.com/gogpu/antialias/gpu" // enable GPU resolve
package gpu

import (
	"github.com/gogpu/antialias"
	gpuimpl "github.com/gogpu/antialias/internal/gpu"
)

func init() {
	accel := &gpuimpl.ComputeAccelerator{}
	if err := antialias.RegisterAccelerator(accel); err != nil {
		antialias.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU
// device from an external provider (e.g., gogpu). This avoids creating a
// separate GPU instance and enables efficient device sharing.
//
// The provider should be a gpucontext.DeviceProvider that also implements
// gpucontext.HalProvider for direct HAL access.
//
// Call this before resolving, typically right after the host created its
// device.
func SetDeviceProvider(provider any) error {
	return antialias.SetAcceleratorDeviceProvider(provider)
}
