package parallel

import "sync"

var (
	defaultPool *WorkerPool
	defaultOnce sync.Once
)

// Default returns the process-wide pool shared by the resolve kernels.
// It is created on first use with one worker per CPU and stays alive for
// the lifetime of the process.
func Default() *WorkerPool {
	defaultOnce.Do(func() {
		defaultPool = NewWorkerPool(0)
	})
	return defaultPool
}

// ForRows calls fn once for every y in [0, height), spreading contiguous
// row bands across the default pool and blocking until all rows are done.
//
// fn runs concurrently for different rows. It must confine its writes to
// its own row; reads may touch any row as long as nothing mutates them
// during the call.
func ForRows(height int, fn func(y int)) {
	if height <= 0 {
		return
	}

	p := Default()
	bands := p.Workers() * 4
	if bands > height {
		bands = height
	}
	if bands <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	work := make([]func(), bands)
	for i := 0; i < bands; i++ {
		y0 := i * height / bands
		y1 := (i + 1) * height / bands
		work[i] = func() {
			for y := y0; y < y1; y++ {
				fn(y)
			}
		}
	}
	p.ExecuteAll(work)
}
