//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rt"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for one frame's command buffer.
const fenceTimeout = 5 * time.Second

// hitStateSize is the size of one HitState element in raytrace.wgsl.
const hitStateSize = 16

// RayAccelerator runs the ray tracing kernel as wgpu/hal compute passes. It
// implements rt.Accelerator.
//
// The object loop of the kernel is unrolled on the host: each frame encodes
// one pass per object for primary rays and one per object for shadow rays,
// all in a single command encoder, with a per-pixel hit state buffer carried
// between passes. This avoids naga SPIR-V bug #5 (loops only execute the
// first iteration).
type RayAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Per-size buffers, reallocated when the frame size changes.
	stateBuf   hal.Buffer
	pixelBuf   hal.Buffer
	stagingBuf hal.Buffer
	pixels     int

	adapterName    string
	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ rt.Accelerator         = (*RayAccelerator)(nil)
	_ rt.DeviceProviderAware = (*RayAccelerator)(nil)
)

func (a *RayAccelerator) Name() string { return executorName }

// Init opens a Vulkan device and builds the compute pipeline. It fails when
// no adapter is available, in which case rendering stays on the CPU.
func (a *RayAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return nil
	}
	if _, err := compileKernel(); err != nil {
		return err
	}
	if err := a.initGPU(); err != nil {
		a.destroyPipelines()
		a.releaseDevice()
		return fmt.Errorf("%w: %w", rt.ErrProgramBuild, err)
	}
	return nil
}

func (a *RayAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyFrameBuffers()
	a.destroyPipelines()
	a.releaseDevice()
}

// SetLogger updates the package logger; called through rt.SetLogger.
func (a *RayAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Ready reports whether a device and pipeline are available.
func (a *RayAccelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (a *RayAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.destroyFrameBuffers()
	a.destroyPipelines()
	a.releaseDevice()

	a.device = device
	a.queue = queue
	a.externalDevice = true
	a.adapterName = "shared"

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("%w: create pipelines with shared device: %w", rt.ErrProgramBuild, err)
	}
	a.gpuReady = true
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// Dispatch renders frame into target on the GPU and blocks until the pixels
// are read back.
func (a *RayAccelerator) Dispatch(target rt.RenderTarget, frame *rt.FrameData) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return rt.ErrNotInitialized
	}
	if target.Width != int(frame.Width) || target.Height != int(frame.Height) || len(target.Data) < frame.OutputSize() {
		return fmt.Errorf("%w: target %dx%d (%d bytes) for %dx%d frame",
			rt.ErrBindArguments, target.Width, target.Height, len(target.Data), frame.Width, frame.Height)
	}

	pixels := frame.PixelCount()
	if err := a.ensureFrameBuffers(pixels); err != nil {
		return err
	}

	scene, err := a.uploadScene(frame)
	if err != nil {
		return err
	}
	defer scene.destroy(a.device)

	gx, gy, stride := dispatchSize(uint32(pixels)) //nolint:gosec // at most 65535*65535
	passes := framePasses(frame.ObjectCount)
	uniformBufs, bindGroups, err := a.createPassBindings(passes, newFrameParams(frame, stride), scene)
	defer a.cleanupBindings(uniformBufs, bindGroups)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := a.encodeAndSubmit(bindGroups, gx, gy); err != nil {
		return err
	}

	readback := make([]byte, pixels*4)
	if err := a.queue.ReadBuffer(a.stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("%w: %w", rt.ErrReadBack, err)
	}
	unpackPixelsFromGPU(readback, target.Data, pixels)

	slogger().Debug("gpu: frame dispatched",
		"passes", len(passes), "groups", gx*gy, "gpu_time", time.Since(start))
	return nil
}

// sceneBuffers holds the per-frame object buffers.
type sceneBuffers struct {
	transforms, props, objects           hal.Buffer
	transformSize, propSize, objectsSize uint64
}

func (s *sceneBuffers) destroy(device hal.Device) {
	for _, b := range []hal.Buffer{s.transforms, s.props, s.objects} {
		if b != nil {
			device.DestroyBuffer(b)
		}
	}
}

func (a *RayAccelerator) uploadScene(f *rt.FrameData) (*sceneBuffers, error) {
	transforms := packFloats(f.ObjectTransforms)
	props := packFloats(f.ObjectParams)
	objects := packObjects(f)

	s := &sceneBuffers{
		transformSize: storageSize(len(transforms)),
		propSize:      storageSize(len(props)),
		objectsSize:   storageSize(len(objects)),
	}
	var err error
	if s.transforms, err = a.createStorage("rt_transforms", s.transformSize, transforms); err != nil {
		s.destroy(a.device)
		return nil, err
	}
	if s.props, err = a.createStorage("rt_props", s.propSize, props); err != nil {
		s.destroy(a.device)
		return nil, err
	}
	if s.objects, err = a.createStorage("rt_objects", s.objectsSize, objects); err != nil {
		s.destroy(a.device)
		return nil, err
	}
	return s, nil
}

func (a *RayAccelerator) createStorage(label string, size uint64, data []byte) (hal.Buffer, error) {
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", rt.ErrBufferAlloc, label, err)
	}
	if len(data) > 0 {
		a.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

// ensureFrameBuffers (re)allocates the hit state, pixel and staging buffers
// for a frame of the given pixel count.
func (a *RayAccelerator) ensureFrameBuffers(pixels int) error {
	if a.pixels == pixels && a.pixelBuf != nil {
		return nil
	}
	a.destroyFrameBuffers()

	n := uint64(pixels) //nolint:gosec // pixel count is positive
	bufs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&a.stateBuf, "rt_hit_state", n * hitStateSize, gputypes.BufferUsageStorage},
		{&a.pixelBuf, "rt_pixels", n * 4, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&a.stagingBuf, "rt_staging", n * 4, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, b := range bufs {
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{Label: b.label, Size: b.size, Usage: b.usage})
		if err != nil {
			a.destroyFrameBuffers()
			return fmt.Errorf("%w: %s (%d bytes): %w", rt.ErrBufferAlloc, b.label, b.size, err)
		}
		*b.dst = buf
	}
	a.pixels = pixels
	slogger().Debug("gpu: frame buffers allocated", "pixels", pixels)
	return nil
}

func (a *RayAccelerator) destroyFrameBuffers() {
	if a.device == nil {
		return
	}
	for _, b := range []*hal.Buffer{&a.stateBuf, &a.pixelBuf, &a.stagingBuf} {
		if *b != nil {
			a.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	a.pixels = 0
}

// createPassBindings creates one uniform buffer and bind group per pass. All
// bind groups share the scene and frame buffers.
func (a *RayAccelerator) createPassBindings(
	passes []pass, base frameParams, scene *sceneBuffers,
) ([]hal.Buffer, []hal.BindGroup, error) {
	uniformBufs := make([]hal.Buffer, 0, len(passes))
	bindGroups := make([]hal.BindGroup, 0, len(passes))
	n := uint64(a.pixels) //nolint:gosec // pixel count is positive
	pixelSize, stateSize := n*4, n*hitStateSize

	for i, p := range passes {
		params := base
		params.Phase = p.phase
		params.ObjectIndex = p.object

		ub, err := a.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "rt_params", Size: frameParamsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return uniformBufs, bindGroups, fmt.Errorf("%w: uniform buffer %d: %w", rt.ErrBufferAlloc, i, err)
		}
		uniformBufs = append(uniformBufs, ub)
		a.queue.WriteBuffer(ub, 0, params.bytes())

		bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "rt_bind", Layout: a.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: frameParamsSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: scene.transforms.NativeHandle(), Offset: 0, Size: scene.transformSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: scene.props.NativeHandle(), Offset: 0, Size: scene.propSize}},
				{Binding: 3, Resource: gputypes.BufferBinding{Buffer: scene.objects.NativeHandle(), Offset: 0, Size: scene.objectsSize}},
				{Binding: 4, Resource: gputypes.BufferBinding{Buffer: a.stateBuf.NativeHandle(), Offset: 0, Size: stateSize}},
				{Binding: 5, Resource: gputypes.BufferBinding{Buffer: a.pixelBuf.NativeHandle(), Offset: 0, Size: pixelSize}},
			},
		})
		if err != nil {
			return uniformBufs, bindGroups, fmt.Errorf("%w: bind group %d: %w", rt.ErrBindArguments, i, err)
		}
		bindGroups = append(bindGroups, bg)
	}
	return uniformBufs, bindGroups, nil
}

// cleanupBindings destroys uniform buffers and bind groups.
func (a *RayAccelerator) cleanupBindings(uniformBufs []hal.Buffer, bindGroups []hal.BindGroup) {
	for _, bg := range bindGroups {
		if bg != nil {
			a.device.DestroyBindGroup(bg)
		}
	}
	for _, ub := range uniformBufs {
		if ub != nil {
			a.device.DestroyBuffer(ub)
		}
	}
}

// encodeAndSubmit records every pass plus the pixel copy into one command
// buffer, submits it and waits for the fence. Storage buffer barriers between
// passes order the hit state updates.
func (a *RayAccelerator) encodeAndSubmit(bindGroups []hal.BindGroup, gx, gy uint32) error {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rt_encoder"})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", rt.ErrDispatch, err)
	}
	if err := encoder.BeginEncoding("rt_frame"); err != nil {
		return fmt.Errorf("%w: begin encoding: %w", rt.ErrDispatch, err)
	}

	for _, bg := range bindGroups {
		computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "rt_pass"})
		computePass.SetPipeline(a.pipeline)
		computePass.SetBindGroup(0, bg, nil)
		computePass.Dispatch(gx, gy, 1)
		computePass.End()
	}

	encoder.CopyBufferToBuffer(a.pixelBuf, a.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(a.pixels) * 4}, //nolint:gosec // pixel count is positive
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %w", rt.ErrDispatch, err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %w", rt.ErrDispatch, err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: submit: %w", rt.ErrDispatch, err)
	}
	fenceOK, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("%w: wait for GPU: %w", rt.ErrDispatch, err)
	}
	if !fenceOK {
		return fmt.Errorf("%w: wait for GPU: timed out after %v", rt.ErrDispatch, fenceTimeout)
	}
	return nil
}

func (a *RayAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
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
	if err := a.createPipelines(); err != nil {
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.adapterName = selected.Info.Name
	a.gpuReady = true
	slogger().Info("gpu: accelerator initialized", "adapter", a.adapterName)
	return nil
}

func (a *RayAccelerator) createPipelines() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rt_raytrace",
		Source: hal.ShaderSource{WGSL: raytraceShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile raytrace shader: %w", err)
	}
	a.shader = shader

	storage := func(binding uint32, t gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding: binding, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: t},
		}
	}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rt_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			storage(0, gputypes.BufferBindingTypeUniform),
			storage(1, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(2, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(3, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(4, gputypes.BufferBindingTypeStorage),
			storage(5, gputypes.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "rt_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "rt_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *RayAccelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}

// releaseDevice drops the device, destroying it unless it is shared.
func (a *RayAccelerator) releaseDevice() {
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}
