package stream

import "math/rand/v2"

// FillRandom sets every element of dst to a uniform value in [-1.0, 1.0).
func FillRandom[T Float](dst []T, rng *rand.Rand) {
	for i := range dst {
		u := T(rng.Float64())
		for u >= 1 {
			// float32 can round a value just below 1 up to 1
			u = T(rng.Float64())
		}
		dst[i] = 2*u - 1
	}
}

// FillConstant sets every element of dst to v.
func FillConstant[T Float](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}

// workerRand returns the random stream for one worker's partition. Streams
// are a function of the seed and the worker index only, so a run is
// reproducible for a fixed seed and worker count.
func workerRand(seed uint64, worker int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(worker)))
}
