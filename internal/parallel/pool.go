// Package parallel provides the goroutine pool behind the CPU executor.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Span is a half-open range [Start, End) of work indices.
type Span struct {
	Start, End int
}

// Len returns End - Start.
func (s Span) Len() int { return s.End - s.Start }

// Split cuts [0, n) into consecutive spans of at most grain indices.
// A grain of 0 or less puts everything in one span.
func Split(n, grain int) []Span {
	if n <= 0 {
		return nil
	}
	if grain <= 0 || grain > n {
		grain = n
	}
	spans := make([]Span, 0, (n+grain-1)/grain)
	for start := 0; start < n; start += grain {
		spans = append(spans, Span{Start: start, End: min(start+grain, n)})
	}
	return spans
}

// job is one span queued on a worker together with its completion group.
type job struct {
	span Span
	fn   func(start, end int)
	wg   *sync.WaitGroup
}

func (j job) run() {
	defer j.wg.Done()
	j.fn(j.span.Start, j.span.End)
}

// Pool is a fixed set of goroutines, each with its own queue. An idle worker
// steals from the other queues before blocking on its own, so one slow span
// does not hold up the rest.
//
// Pool is safe for concurrent use. Run must not be called from inside a job.
type Pool struct {
	workers int
	queues  []chan job
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// closeMu is held shared by Run and exclusively by Close, so the
	// workers outlive every Run that queued spans on them.
	closeMu sync.RWMutex
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)
	p := &Pool{
		workers: workers,
		queues:  make([]chan job, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan job, queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case j := <-own:
			j.run()
		default:
			if j, ok := p.steal(id); ok {
				j.run()
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case j := <-own:
				j.run()
			}
		}
	}
}

func drain(q chan job) {
	for {
		select {
		case j := <-q:
			j.run()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) (job, bool) {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case j := <-p.queues[i]:
			return j, true
		default:
		}
	}
	return job{}, false
}

// Run splits [0, n) into spans of grain indices, calls fn once per span on
// the workers and returns when every span has finished. Spans never overlap,
// so fn may write to disjoint per-index output without locking.
//
// After Close, Run executes the spans on the calling goroutine. A Close
// concurrent with Run waits for it to finish.
func (p *Pool) Run(n, grain int, fn func(start, end int)) {
	spans := Split(n, grain)
	if len(spans) == 0 {
		return
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if !p.running.Load() {
		for _, s := range spans {
			fn(s.Start, s.End)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(spans))
	for i, s := range spans {
		p.queues[i%p.workers] <- job{span: s, fn: fn, wg: &wg}
	}
	wg.Wait()
}

// Close stops the workers after the queued spans have run.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.closeMu.Unlock()
		return
	}
	close(p.done)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether Close has not been called yet.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
