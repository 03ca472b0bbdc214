// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/antialias"
	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ComputeAccelerator runs the anti-aliasing resolves as compute dispatches.
// It implements antialias.GPUAccelerator and antialias.DeviceProviderAware.
//
// The TAA resolve is a single stage; SMAA runs its three stages back to back
// in one submission, keeping the edge and weight textures on the GPU. Frame
// data crosses the bus once in each direction per resolve.
type ComputeAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	engine *resolveEngine

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
	initFailed     bool // true after a failed standalone device init
}

// Interface compliance checks.
var _ antialias.GPUAccelerator = (*ComputeAccelerator)(nil)
var _ antialias.DeviceProviderAware = (*ComputeAccelerator)(nil)

// Name returns the accelerator identifier.
func (a *ComputeAccelerator) Name() string { return "resolve-compute" }

// Init registers the accelerator. GPU device initialization is deferred
// until the first resolve or until SetDeviceProvider is called, so a device
// handed over by the host never has to coexist with a standalone one the
// accelerator created on its own.
func (a *ComputeAccelerator) Init() error {
	return nil
}

// Close releases all GPU resources held by the accelerator.
func (a *ComputeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}

	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		// Don't destroy shared resources -- we don't own them.
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
	a.initFailed = false
}

// SetLogger sets the logger for the GPU accelerator and its internal
// packages. Called by antialias.SetLogger to propagate logging
// configuration.
func (a *ComputeAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// CanAccelerate reports whether this accelerator supports the given
// operation. Both resolve passes are supported; whether a device is
// actually available only surfaces at dispatch time as ErrFallbackToCPU.
func (a *ComputeAccelerator) CanAccelerate(op antialias.AcceleratedOp) bool {
	return op&(antialias.AccelSMAA|antialias.AccelTAA) != 0
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *ComputeAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("resolve-compute: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("resolve-compute: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("resolve-compute: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Destroy own resources if we created them.
	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	// Use provided resources.
	a.device = device
	a.queue = queue
	a.externalDevice = true
	a.initFailed = false

	// Create the engine with the provided device/queue.
	engine := newResolveEngine(device, queue)
	if err := engine.Init(); err != nil {
		slogger().Warn("resolve-compute: pipeline init failed, compute unavailable", "error", err)
		// Still mark gpuReady -- the device is valid, just compute isn't.
		a.gpuReady = true
		return nil
	}
	a.engine = engine

	a.gpuReady = true
	slogger().Debug("resolve-compute: switched to shared GPU device")
	return nil
}

// ProcessSMAA runs the three SMAA stages over src on the GPU. Returns
// ErrFallbackToCPU when no device is available.
func (a *ComputeAccelerator) ProcessSMAA(dst, src *frame.ColorBuffer, cfg smaa.Config) error {
	engine, err := a.ensureEngine()
	if err != nil {
		return err
	}
	return engine.processSMAA(dst, src, cfg)
}

// ResolveTAA runs the temporal resolve over in on the GPU. Returns
// ErrFallbackToCPU when no device is available.
func (a *ComputeAccelerator) ResolveTAA(output *frame.ColorBuffer, in taa.Input, cfg taa.Config) error {
	engine, err := a.ensureEngine()
	if err != nil {
		return err
	}
	return engine.resolveTAA(output, in, cfg)
}

// ensureEngine returns the live engine, creating a standalone device on the
// first call when the host never provided one. A failed attempt is not
// retried; every resolve after it falls back to the CPU immediately.
func (a *ComputeAccelerator) ensureEngine() (*resolveEngine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}
	if a.gpuReady || a.initFailed {
		return nil, antialias.ErrFallbackToCPU
	}
	if err := a.initGPU(); err != nil {
		a.initFailed = true
		slogger().Warn("resolve-compute: GPU init failed, resolving on CPU", "error", err)
		return nil, antialias.ErrFallbackToCPU
	}
	if a.engine == nil {
		return nil, antialias.ErrFallbackToCPU
	}
	return a.engine, nil
}

// initGPU creates a standalone Vulkan device for compute-only use.
// This is the fallback path when no external device is provided via
// SetDeviceProvider (e.g., when the pipeline runs without a gogpu window).
func (a *ComputeAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue

	// Create the engine with the standalone device/queue.
	engine := newResolveEngine(a.device, a.queue)
	if err := engine.Init(); err != nil {
		slogger().Warn("resolve-compute: pipeline init failed, compute unavailable", "error", err)
		a.gpuReady = true
		return nil
	}
	a.engine = engine

	a.gpuReady = true
	slogger().Info("resolve-compute: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return nil
}
