package stream

import (
	"runtime"
	"sync"
)

// rangeTask is one kernel pass over a worker's share of the index space.
type rangeTask func(worker, lo, hi int)

// WorkerPool runs range functions on a fixed set of goroutines. Each worker
// owns a static, disjoint [lo, hi) slice of the index space for the life of
// the pool, so kernels write without locks and first-touch initialization
// places pages near the worker that will stream them. Every worker is locked
// to its OS thread until Close, so thread-scoped state set up through
// RunIndexed (affinity, hardware counters) stays with that worker.
//
// Run is a barrier: it returns only after every worker has finished the pass.
type WorkerPool struct {
	bounds []int // worker i owns [bounds[i], bounds[i+1])
	tasks  []chan rangeTask
	wg     sync.WaitGroup
	exited sync.WaitGroup

	pinErrs []error
	closed  bool
}

// NewWorkerPool partitions length elements across workers goroutines. When
// cpus is non-empty each worker is pinned to cpus[i % len(cpus)]; pinning
// failures are recorded, not fatal.
func NewWorkerPool(length, workers int, cpus []int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > length && length > 0 {
		workers = length
	}
	if workers < 1 {
		workers = 1
	}

	pool := &WorkerPool{
		bounds: partition(length, workers),
	}

	pool.tasks = make([]chan rangeTask, workers)
	started := make(chan error, workers)
	for i := 0; i < workers; i++ {
		pool.tasks[i] = make(chan rangeTask, 1)
		pool.exited.Add(1)
		go pool.worker(i, cpus, started)
	}
	for i := 0; i < workers; i++ {
		if err := <-started; err != nil {
			pool.pinErrs = append(pool.pinErrs, err)
		}
	}
	return pool
}

// partition splits [0, length) into n nearly equal contiguous ranges.
func partition(length, n int) []int {
	bounds := make([]int, n+1)
	for i := 0; i <= n; i++ {
		bounds[i] = int(int64(i) * int64(length) / int64(n))
	}
	return bounds
}

// worker executes tasks on its own range until the pool closes.
func (wp *WorkerPool) worker(id int, cpus []int, started chan<- error) {
	defer wp.exited.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var err error
	if len(cpus) > 0 {
		err = pinThread(cpus[id%len(cpus)])
	}
	started <- err

	lo, hi := wp.bounds[id], wp.bounds[id+1]
	for task := range wp.tasks[id] {
		task(id, lo, hi)
		wp.wg.Done()
	}
}

// Workers returns the number of partitions.
func (wp *WorkerPool) Workers() int {
	return len(wp.bounds) - 1
}

// Range returns the index range owned by worker i.
func (wp *WorkerPool) Range(i int) (lo, hi int) {
	return wp.bounds[i], wp.bounds[i+1]
}

// PinErrors returns the affinity errors reported by workers at startup.
func (wp *WorkerPool) PinErrors() []error {
	return wp.pinErrs
}

// Run executes fn on every worker's range and waits for all of them.
func (wp *WorkerPool) Run(fn func(lo, hi int)) {
	wp.RunIndexed(func(_, lo, hi int) { fn(lo, hi) })
}

// RunIndexed is Run with the worker index, for per-worker state such as
// random number streams and counters.
func (wp *WorkerPool) RunIndexed(fn func(worker, lo, hi int)) {
	wp.wg.Add(len(wp.tasks))
	for _, tasks := range wp.tasks {
		tasks <- fn
	}
	wp.wg.Wait()
}

// Close shuts down the worker goroutines. It is safe to call more than once.
func (wp *WorkerPool) Close() {
	if wp.closed {
		return
	}
	wp.closed = true
	for _, tasks := range wp.tasks {
		close(tasks)
	}
	wp.exited.Wait()
}
