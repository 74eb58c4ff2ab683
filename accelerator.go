package rt

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates an accelerator cannot take this frame.
// The renderer runs the CPU executor instead.
var ErrFallbackToCPU = errors.New("rt: falling back to CPU rendering")

// RenderTarget is the RGBA8 output of one frame: 4 bytes per pixel, rows
// laid out top to bottom with the given Stride.
type RenderTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// check validates t against the frame it is about to receive.
func (t RenderTarget) check(f *FrameData) error {
	if t.Width != int(f.Width) || t.Height != int(f.Height) {
		return errors.Join(ErrBindArguments,
			errors.New("rt: target size does not match frame"))
	}
	if t.Stride != t.Width*BytesPerPixel || len(t.Data) < f.OutputSize() {
		return errors.Join(ErrBindArguments,
			errors.New("rt: target buffer too small or strided"))
	}
	return nil
}

// Accelerator executes the per-pixel kernel for a whole frame.
//
// When registered via RegisterAccelerator, a Renderer dispatches frames to it
// instead of the built-in CPU executor. If Dispatch returns ErrFallbackToCPU
// the frame is rendered on the CPU; any other error aborts the frame.
//
// Implementations live in executor packages. The GPU executor is enabled by a
// blank import:
//
//	import _ "github.com/gogpu/rt/gpu"
type Accelerator interface {
	// Name returns the accelerator name (e.g., "cpu", "wgpu").
	Name() string

	// Init acquires device resources and builds the kernel program.
	Init() error

	// Close releases device resources.
	Close()

	// Dispatch runs the kernel for every pixel of frame and stores the
	// results in target. It blocks until the output is in target.Data.
	Dispatch(target RenderTarget, frame *FrameData) error
}

// DeviceProviderAware is implemented by accelerators that can run on a GPU
// device owned by someone else (for example a windowing library).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator installs a as the default accelerator for new
// renderers. Init is called first; on failure nothing is registered and the
// error is returned. A previously registered accelerator is closed.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("rt: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	propagateLogger(a, Logger())
	Logger().Info("rt: accelerator registered", "name", a.Name())
	return nil
}

// UnregisterAccelerator removes and closes the registered accelerator.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// RegisteredAccelerator returns the registered accelerator, or nil if none.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator. It is a no-op if nothing is registered or the accelerator
// cannot share devices.
//
// The provider should implement HalDevice() any and HalQueue() any returning
// wgpu/hal types, as gpucontext.HalProvider does.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
