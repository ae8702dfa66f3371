//go:build linux
// +build linux

package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWorkerPoolWorkersKeepTheirThreads(t *testing.T) {
	for _, workers := range []int{1, 4} {
		pool := NewWorkerPool(1000, workers, nil)

		first := make([]int, pool.Workers())
		pool.RunIndexed(func(w, _, _ int) { first[w] = unix.Gettid() })

		for pass := 0; pass < 10; pass++ {
			tids := make([]int, pool.Workers())
			pool.RunIndexed(func(w, _, _ int) { tids[w] = unix.Gettid() })
			require.Equal(t, first, tids, "workers=%d pass %d", workers, pass)
		}

		distinct := map[int]bool{}
		for _, tid := range first {
			distinct[tid] = true
		}
		assert.Len(t, distinct, pool.Workers())
		pool.Close()
	}
}
