package rt

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	// Registered accelerator if any, CPU otherwise.
//	r := rt.NewRenderer(1280, 720)
//
//	// CPU only, 4 workers, shadow rays along the light.
//	r := rt.NewRenderer(1280, 720,
//	    rt.WithCPUOnly(),
//	    rt.WithWorkers(4),
//	    rt.WithShadowMode(rt.ShadowAlongLight))
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	accelerator Accelerator
	ownsAccel   bool
	cpuOnly     bool
	workers     int
	spanRows    int
	shadow      ShadowMode
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		workers:  0, // GOMAXPROCS
		spanRows: 4,
		shadow:   ShadowTowardLight,
	}
}

// WithAccelerator makes the renderer use a instead of the registered
// accelerator. The renderer owns a: Init calls a.Init and Close calls a.Close.
func WithAccelerator(a Accelerator) RendererOption {
	return func(o *rendererOptions) {
		o.accelerator = a
		o.ownsAccel = a != nil
		o.cpuOnly = false
	}
}

// WithCPUOnly ignores any accelerator and renders on the CPU executor.
func WithCPUOnly() RendererOption {
	return func(o *rendererOptions) {
		o.cpuOnly = true
		o.accelerator = nil
		o.ownsAccel = false
	}
}

// WithWorkers sets the number of CPU executor goroutines.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) RendererOption {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithSpanRows sets how many image rows the CPU executor hands to a worker
// at a time.
func WithSpanRows(rows int) RendererOption {
	return func(o *rendererOptions) {
		if rows > 0 {
			o.spanRows = rows
		}
	}
}

// WithShadowMode selects the shadow ray direction.
func WithShadowMode(m ShadowMode) RendererOption {
	return func(o *rendererOptions) {
		o.shadow = m
	}
}
