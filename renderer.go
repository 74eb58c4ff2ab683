package rt

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Renderer turns a camera and a world into RGBA8 frames of a fixed size.
//
// Rendering is synchronous and single-buffered: Render blocks until the frame
// is complete and holds the renderer's lock for the duration, so concurrent
// callers are serialized rather than overlapped.
type Renderer struct {
	mu sync.Mutex

	width, height int
	opts          rendererOptions

	cpu   *CPUAccelerator
	accel Accelerator // nil renders on cpu

	frame       FrameData
	initialized bool
	lastFrame   time.Duration
}

// NewRenderer creates a renderer for width x height frames.
// Call Init before rendering.
func NewRenderer(width, height int, opts ...RendererOption) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{width: width, height: height, opts: o}
}

// Init validates the frame size and acquires executor resources. On error
// the renderer stays uninitialized and nothing is leaked.
func (r *Renderer) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if err := CheckDimensions(r.width, r.height); err != nil {
		return err
	}

	var accel Accelerator
	switch {
	case r.opts.cpuOnly:
	case r.opts.accelerator != nil:
		if err := r.opts.accelerator.Init(); err != nil {
			return err
		}
		propagateLogger(r.opts.accelerator, Logger())
		accel = r.opts.accelerator
	default:
		accel = RegisteredAccelerator()
	}

	cpu := NewCPUAccelerator(r.opts.workers)
	cpu.spanRows = r.opts.spanRows
	if err := cpu.Init(); err != nil {
		if r.opts.ownsAccel && accel != nil {
			accel.Close()
		}
		return err
	}

	r.cpu = cpu
	r.accel = accel
	r.initialized = true

	Logger().Info("rt: renderer initialized",
		"width", r.width, "height", r.height,
		"accelerator", r.acceleratorName(),
		"workers", cpu.Workers(),
		"shadow", r.opts.shadow.String())
	return nil
}

// Close releases executor resources. The renderer can be initialized again.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return
	}
	r.cpu.Close()
	if r.opts.ownsAccel && r.accel != nil {
		r.accel.Close()
	}
	r.cpu, r.accel = nil, nil
	r.initialized = false
}

// Size returns the frame dimensions.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// AcceleratorName returns the name of the executor frames are sent to first.
func (r *Renderer) AcceleratorName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acceleratorName()
}

func (r *Renderer) acceleratorName() string {
	if r.accel != nil {
		return r.accel.Name()
	}
	return "cpu"
}

// LastFrameDuration returns how long the most recent successful frame took.
func (r *Renderer) LastFrameDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame
}

// Render renders one frame and returns width*height*4 RGBA8 bytes, indexed
// by y*width+x. The returned slice is owned by the caller.
func (r *Renderer) Render(camera Camera, world *World) ([]uint8, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	out := make([]uint8, r.width*r.height*BytesPerPixel)
	if err := r.RenderTo(out, camera, world); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderImage renders one frame into a new Image.
func (r *Renderer) RenderImage(camera Camera, world *World) (*Image, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	img := NewImage(r.width, r.height)
	if err := r.RenderTo(img.Pix, camera, world); err != nil {
		return nil, err
	}
	return img, nil
}

// checkReady reports ErrNotInitialized before any frame-sized allocation.
// Init has validated the dimensions of an initialized renderer.
func (r *Renderer) checkReady() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return ErrNotInitialized
	}
	return nil
}

// RenderTo renders one frame into dst, which must hold width*height*4 bytes.
func (r *Renderer) RenderTo(dst []uint8, camera Camera, world *World) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return ErrNotInitialized
	}
	if len(dst) < r.width*r.height*BytesPerPixel {
		return fmt.Errorf("%w: output buffer holds %d bytes, frame needs %d",
			ErrBindArguments, len(dst), r.width*r.height*BytesPerPixel)
	}

	start := time.Now()
	if err := r.frame.Pack(r.width, r.height, camera, world, r.opts.shadow); err != nil {
		return err
	}

	target := RenderTarget{
		Data:   dst,
		Width:  r.width,
		Height: r.height,
		Stride: r.width * BytesPerPixel,
	}

	executor := "cpu"
	dispatched := false
	if r.accel != nil {
		err := r.accel.Dispatch(target, &r.frame)
		switch {
		case err == nil:
			executor = r.accel.Name()
			dispatched = true
		case errors.Is(err, ErrFallbackToCPU):
			Logger().Warn("rt: accelerator declined frame, rendering on CPU",
				"accelerator", r.accel.Name(), "err", err)
		default:
			return err
		}
	}
	if !dispatched {
		if err := r.cpu.Dispatch(target, &r.frame); err != nil {
			return err
		}
	}

	r.lastFrame = time.Since(start)
	logFrame(executor, &r.frame, r.lastFrame)
	return nil
}
