// Package parallel fans per-pixel resolve work out across CPU cores.
//
// The resolve kernels process every pixel of a frame independently, so the
// package splits frames into row bands and runs the bands on a pool of
// worker goroutines. Workers steal from each other's queues when idle,
// which keeps cores busy when bands finish at different speeds.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool distributes work items across a fixed set of goroutines.
//
// Each worker owns a queue and pulls from it first, stealing from the other
// queues when its own runs dry. WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// workQueues holds one buffered queue per worker.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to exit.
	wg sync.WaitGroup

	// running reports whether the pool still accepts work.
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers and starts
// them immediately. If workers is zero or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A few queued items per worker absorbs the jitter between submission
	// and pickup without holding many closures alive.
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range p.workQueues {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// worker is the loop run by each goroutine in the pool.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			if fn != nil {
				fn()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			// Nothing to steal anywhere, block on the own queue.
			select {
			case <-p.done:
				p.drain(own)
				return
			case fn := <-own:
				if fn != nil {
					fn()
				}
			}
		}
	}
}

// drain runs every item still sitting in a queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case fn := <-queue:
			if fn != nil {
				fn()
			}
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil when all
// other queues are empty.
func (p *WorkerPool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case fn := <-p.workQueues[i]:
			return fn
		default:
		}
	}
	return nil
}

// ExecuteAll runs every item in work on the pool and blocks until the last
// one finishes. Items submitted while the pool is shutting down run inline
// on the caller, so the completion guarantee holds either way.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		item := fn
		wrapped := func() {
			defer wg.Done()
			item()
		}
		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// Submit queues a single item on the worker with the shortest queue.
// If the pool is closed the item runs inline.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil {
		return
	}
	if !p.running.Load() {
		fn()
		return
	}

	minIdx := 0
	minLen := len(p.workQueues[0])
	for i := 1; i < p.workers; i++ {
		if n := len(p.workQueues[i]); n < minLen {
			minLen = n
			minIdx = i
		}
	}

	select {
	case p.workQueues[minIdx] <- fn:
	case <-p.done:
		fn()
	}
}

// Close stops the pool. Queued work still runs before the workers exit.
// Close is safe to call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
