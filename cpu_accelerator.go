package rt

import (
	"sync"

	"github.com/gogpu/rt/internal/parallel"
)

// CPUAccelerator runs the kernel on a goroutine pool. Pixels are handed to
// workers in spans of whole rows; every pixel is written by exactly one
// worker, so no locking is needed on the output.
type CPUAccelerator struct {
	mu       sync.Mutex
	workers  int
	spanRows int
	pool     *parallel.Pool
}

// NewCPUAccelerator returns a CPU executor with the given worker count
// (0 means GOMAXPROCS). Call Init before Dispatch.
func NewCPUAccelerator(workers int) *CPUAccelerator {
	return &CPUAccelerator{workers: workers, spanRows: 4}
}

// Name implements Accelerator.
func (c *CPUAccelerator) Name() string { return "cpu" }

// Init starts the worker pool. Calling Init twice is a no-op.
func (c *CPUAccelerator) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		c.pool = parallel.NewPool(c.workers)
	}
	return nil
}

// Close stops the worker pool.
func (c *CPUAccelerator) Close() {
	c.mu.Lock()
	p := c.pool
	c.pool = nil
	c.mu.Unlock()
	if p != nil {
		p.Close()
	}
}

// Workers returns the pool size, or 0 before Init.
func (c *CPUAccelerator) Workers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return 0
	}
	return c.pool.Workers()
}

// Dispatch implements Accelerator.
func (c *CPUAccelerator) Dispatch(target RenderTarget, frame *FrameData) error {
	c.mu.Lock()
	p := c.pool
	c.mu.Unlock()
	if p == nil {
		return ErrNotInitialized
	}
	if err := target.check(frame); err != nil {
		return err
	}

	grain := int(frame.Width) * max(c.spanRows, 1)
	p.Run(frame.PixelCount(), grain, func(start, end int) {
		RenderSpan(frame, target.Data, start, end)
	})
	return nil
}
