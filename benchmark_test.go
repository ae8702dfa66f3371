package stream

import (
	"fmt"
	"testing"
)

// BenchmarkKernels measures each kernel on a single goroutine over sizes
// from L1-resident to memory-resident.
func BenchmarkKernels(b *testing.B) {
	sizes := []int{1 << 10, 1 << 16, 1 << 22}
	for _, n := range sizes {
		a := make([]float64, n)
		bb := make([]float64, n)
		c := make([]float64, n)
		FillConstant(a, 1)
		FillConstant(bb, 2)
		for _, k := range Kernels {
			fn := kernelFunc(k, a, bb, c, 3)
			b.Run(fmt.Sprintf("%s/%d", k, n), func(b *testing.B) {
				b.SetBytes(k.Bytes(n, 8))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					fn(0, n)
				}
			})
		}
	}
}

// BenchmarkPoolTriad measures triad through the worker pool.
func BenchmarkPoolTriad(b *testing.B) {
	const n = 1 << 22
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			arena, err := NewArena(n, 0, 8)
			if err != nil {
				b.Fatal(err)
			}
			defer arena.Close()
			x, y, z := arenaView[float64](arena, 0), arenaView[float64](arena, 1), arenaView[float64](arena, 2)

			pool := NewWorkerPool(n, workers, nil)
			defer pool.Close()
			pool.Run(func(lo, hi int) {
				FillConstant(x[lo:hi], 1)
				FillConstant(y[lo:hi], 2)
				FillConstant(z[lo:hi], 0)
			})

			fn := kernelFunc(Triad, x, y, z, 3)
			b.SetBytes(Triad.Bytes(n, 8))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				pool.Run(fn)
			}
		})
	}
}
