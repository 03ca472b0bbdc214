package antialias

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestDeviceHandleAlias(t *testing.T) {
	handle := NullDeviceHandle{}

	// Compile-time check: DeviceHandle is gpucontext.DeviceProvider.
	acceptProvider := func(_ gpucontext.DeviceProvider) {}
	acceptProvider(handle)
}

// nullProvider is a device-providing accelerator host for testing UseDevice.
type nullProvider struct {
	NullDeviceHandle
}

func TestUseDevice(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	// Nil and null handles are no-ops, with or without an accelerator.
	if err := UseDevice(nil); err != nil {
		t.Errorf("UseDevice(nil) = %v", err)
	}
	if err := UseDevice(NullDeviceHandle{}); err != nil {
		t.Errorf("UseDevice(NullDeviceHandle{}) = %v", err)
	}

	// A real provider reaches a device-aware accelerator.
	aware := &deviceAwareMock{mockAccelerator: mockAccelerator{name: "aware"}}
	if err := RegisterAccelerator(aware); err != nil {
		t.Fatalf("RegisterAccelerator() = %v", err)
	}
	provider := &nullProvider{}
	if err := UseDevice(provider); err != nil {
		t.Fatalf("UseDevice() = %v", err)
	}
	if aware.provider != provider {
		t.Error("UseDevice did not forward the provider to the accelerator")
	}

	// Null handles must never displace an already shared device.
	if err := UseDevice(NullDeviceHandle{}); err != nil {
		t.Errorf("UseDevice(NullDeviceHandle{}) = %v", err)
	}
	if aware.provider != provider {
		t.Error("null handle overwrote the accelerator's provider")
	}
}
