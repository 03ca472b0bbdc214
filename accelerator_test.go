package antialias

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// mockAccelerator implements GPUAccelerator for testing.
type mockAccelerator struct {
	name     string
	initErr  error
	closed   bool
	canAccel AcceleratedOp
	logger   *slog.Logger

	smaaCalls int
	taaCalls  int
	smaaErr   error
	taaErr    error
	taaColor  f32.Vec4 // written to every output pixel by ResolveTAA

	mu sync.Mutex
}

func (m *mockAccelerator) Name() string { return m.name }

func (m *mockAccelerator) Init() error { return m.initErr }

func (m *mockAccelerator) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockAccelerator) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockAccelerator) SetLogger(l *slog.Logger) { m.logger = l }

func (m *mockAccelerator) CanAccelerate(op AcceleratedOp) bool {
	return m.canAccel&op != 0
}

func (m *mockAccelerator) ProcessSMAA(dst, src *frame.ColorBuffer, _ smaa.Config) error {
	m.mu.Lock()
	m.smaaCalls++
	m.mu.Unlock()
	if m.smaaErr != nil {
		return m.smaaErr
	}
	return dst.CopyFrom(src)
}

func (m *mockAccelerator) ResolveTAA(output *frame.ColorBuffer, in taa.Input, _ taa.Config) error {
	m.mu.Lock()
	m.taaCalls++
	m.mu.Unlock()
	if m.taaErr != nil {
		return m.taaErr
	}
	output.Clear(m.taaColor)
	in.HistoryOut.Clear(m.taaColor)
	return nil
}

// resetAccelerator clears the global accelerator state between tests.
func resetAccelerator() {
	accelMu.Lock()
	accel = nil
	accelMu.Unlock()
}

func TestRegisterAcceleratorNil(t *testing.T) {
	resetAccelerator()

	err := RegisterAccelerator(nil)
	if err == nil {
		t.Fatal("expected error when registering nil accelerator")
	}
	if Accelerator() != nil {
		t.Error("accelerator should remain nil after failed registration")
	}
}

func TestRegisterAcceleratorInitError(t *testing.T) {
	resetAccelerator()

	initErr := errors.New("GPU init failed")
	mock := &mockAccelerator{name: "failing", initErr: initErr}

	err := RegisterAccelerator(mock)
	if err == nil {
		t.Fatal("expected error when Init fails")
	}
	if !errors.Is(err, initErr) {
		t.Errorf("expected init error, got: %v", err)
	}
	if Accelerator() != nil {
		t.Error("accelerator should remain nil after Init failure")
	}
}

func TestRegisterAcceleratorSuccess(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	mock := &mockAccelerator{name: "test-gpu", canAccel: AccelSMAA | AccelTAA}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := Accelerator()
	if a == nil {
		t.Fatal("expected non-nil accelerator after registration")
	}
	if a.Name() != "test-gpu" {
		t.Errorf("expected name %q, got %q", "test-gpu", a.Name())
	}
	if !a.CanAccelerate(AccelSMAA) || !a.CanAccelerate(AccelTAA) {
		t.Error("registered accelerator lost its capabilities")
	}
}

func TestRegisterAcceleratorReplacesOld(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	first := &mockAccelerator{name: "first"}
	second := &mockAccelerator{name: "second"}

	if err := RegisterAccelerator(first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := RegisterAccelerator(second); err != nil {
		t.Fatalf("register second: %v", err)
	}

	if got := Accelerator().Name(); got != "second" {
		t.Errorf("Accelerator().Name() = %q, want %q", got, "second")
	}
	if !first.isClosed() {
		t.Error("replaced accelerator was not closed")
	}
	if second.isClosed() {
		t.Error("active accelerator must not be closed")
	}
}

type deviceAwareMock struct {
	mockAccelerator
	provider any
}

func (m *deviceAwareMock) SetDeviceProvider(provider any) error {
	m.provider = provider
	return nil
}

func TestSetAcceleratorDeviceProvider(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	// No accelerator registered: a no-op.
	if err := SetAcceleratorDeviceProvider("provider"); err != nil {
		t.Fatalf("SetAcceleratorDeviceProvider() = %v with no accelerator", err)
	}

	// Accelerator without device sharing: still a no-op.
	plain := &mockAccelerator{name: "plain"}
	if err := RegisterAccelerator(plain); err != nil {
		t.Fatalf("register plain: %v", err)
	}
	if err := SetAcceleratorDeviceProvider("provider"); err != nil {
		t.Fatalf("SetAcceleratorDeviceProvider() = %v for plain accelerator", err)
	}

	// Device-aware accelerator receives the provider.
	aware := &deviceAwareMock{mockAccelerator: mockAccelerator{name: "aware"}}
	if err := RegisterAccelerator(aware); err != nil {
		t.Fatalf("register aware: %v", err)
	}
	if err := SetAcceleratorDeviceProvider("the-device"); err != nil {
		t.Fatalf("SetAcceleratorDeviceProvider() = %v", err)
	}
	if aware.provider != "the-device" {
		t.Errorf("provider = %v, want %q", aware.provider, "the-device")
	}
}
