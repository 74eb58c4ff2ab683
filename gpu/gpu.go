//go:build !nogpu

// Package gpu registers the GPU executor for the ray tracer.
//
// Importing this package registers a wgpu compute accelerator that runs the
// per-pixel kernel as a WGSL shader. Renderers created afterwards use it
// unless built with WithCPUOnly.
//
// If GPU initialization fails (no Vulkan adapter available), the registration
// is skipped with a warning on rt.Logger and rendering stays on the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/rt/gpu" // enable GPU rendering
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/rt"
	gpuimpl "github.com/gogpu/rt/internal/gpu"
)

func init() {
	if err := rt.RegisterAccelerator(&gpuimpl.RayAccelerator{}); err != nil {
		rt.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu) instead of opening its own.
//
// The provider must also implement HalDevice() any and HalQueue() any for
// direct HAL access. Without a registered accelerator this is a no-op.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return rt.SetAcceleratorDeviceProvider(provider)
}
