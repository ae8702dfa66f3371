package stream

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversRange(t *testing.T) {
	tests := []struct {
		length, n int
	}{
		{10, 1}, {10, 3}, {10, 10}, {1_000_003, 7}, {5, 4},
	}
	for _, tt := range tests {
		bounds := partition(tt.length, tt.n)
		require.Len(t, bounds, tt.n+1)
		assert.Equal(t, 0, bounds[0])
		assert.Equal(t, tt.length, bounds[tt.n])
		for i := 0; i < tt.n; i++ {
			size := bounds[i+1] - bounds[i]
			assert.GreaterOrEqual(t, size, tt.length/tt.n)
			assert.LessOrEqual(t, size, tt.length/tt.n+1)
		}
	}
}

func TestWorkerPoolClampsWorkers(t *testing.T) {
	pool := NewWorkerPool(3, 8, nil)
	defer pool.Close()
	assert.Equal(t, 3, pool.Workers())
}

func TestWorkerPoolSingleWorker(t *testing.T) {
	pool := NewWorkerPool(100, 1, nil)
	defer pool.Close()

	var calls int
	pool.RunIndexed(func(w, lo, hi int) {
		calls++
		assert.Equal(t, 0, w)
		assert.Equal(t, 0, lo)
		assert.Equal(t, 100, hi)
	})
	assert.Equal(t, 1, calls)
}

func TestWorkerPoolRunCoversEveryIndexOnce(t *testing.T) {
	const length = 10_007
	pool := NewWorkerPool(length, 4, nil)
	defer pool.Close()

	hits := make([]int32, length)
	for pass := 0; pass < 5; pass++ {
		pool.Run(func(lo, hi int) {
			for i := lo; i < hi; i++ {
				hits[i]++
			}
		})
	}
	for i, h := range hits {
		require.Equal(t, int32(5), h, "index %d", i)
	}
}

func TestWorkerPoolRunIsABarrier(t *testing.T) {
	pool := NewWorkerPool(1000, 4, nil)
	defer pool.Close()

	var done atomic.Int32
	for pass := 1; pass <= 20; pass++ {
		pool.Run(func(lo, hi int) { done.Add(1) })
		// Every worker has finished before Run returns.
		require.Equal(t, int32(4*pass), done.Load())
	}
}

func TestWorkerPoolStaticRanges(t *testing.T) {
	pool := NewWorkerPool(1000, 4, nil)
	defer pool.Close()

	var mu sync.Mutex
	seen := map[int][2]int{}
	for pass := 0; pass < 3; pass++ {
		pool.RunIndexed(func(w, lo, hi int) {
			mu.Lock()
			defer mu.Unlock()
			if prev, ok := seen[w]; ok {
				assert.Equal(t, prev, [2]int{lo, hi})
			}
			seen[w] = [2]int{lo, hi}
		})
	}
	for w := 0; w < pool.Workers(); w++ {
		lo, hi := pool.Range(w)
		assert.Equal(t, [2]int{lo, hi}, seen[w])
	}
}

func TestWorkerPoolCloseIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(100, 2, nil)
	pool.Close()
	pool.Close()
}

func TestWorkerPoolPinning(t *testing.T) {
	cpus, err := AllowedCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)

	pool := NewWorkerPool(100, 2, cpus[:1])
	defer pool.Close()

	// Pinning may be refused (containers, non-Linux); the pool still runs.
	var n atomic.Int32
	pool.Run(func(lo, hi int) { n.Add(int32(hi - lo)) })
	assert.Equal(t, int32(100), n.Load())
}
