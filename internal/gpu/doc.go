//go:build !nogpu

// Package gpu provides the GPU executor for the ray tracer.
//
// It runs the per-pixel kernel as a WGSL compute shader through the gogpu/wgpu
// HAL (Pure Go, zero CGO). The Vulkan backend is registered by blank import.
//
// # Frame Pipeline
//
// A frame is a single command buffer with 2N+2 compute passes for N objects:
//
//  1. Clear: reset the per-pixel hit state.
//  2. Primary: one pass per object; keep the strictly nearest positive hit.
//  3. Shadow: one pass per object; trace the shadow ray from each hit.
//  4. Resolve: shade the hit or write the background.
//
// Each pass binds its own uniform block (phase and object index) and shares
// the object buffers, the hit state and the packed RGBA output. The output is
// copied to a staging buffer and read back after a fence wait.
//
// Buffers:
//
//	binding 0  uniform  frameParams (128 bytes)
//	binding 1  storage  object transforms, 12 f32 per object
//	binding 2  storage  object parameters, PropSize f32 per object
//	binding 3  storage  r | g<<8 | b<<16 | kind<<24 per object
//	binding 4  storage  hit state, 16 bytes per pixel
//	binding 5  storage  output, r | g<<8 | b<<16 | a<<24 per pixel
//
// Dispatches use 64-wide workgroups. Grids with more than 65535 groups wrap
// into a second dimension; invocations past the last pixel return early.
package gpu
