package stream

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillRandomRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))

	f64 := make([]float64, 10_000)
	FillRandom(f64, rng)
	f32 := make([]float32, 10_000)
	FillRandom(f32, rng)

	var neg, pos int
	for i := range f64 {
		assert.GreaterOrEqual(t, f64[i], -1.0)
		assert.Less(t, f64[i], 1.0)
		assert.GreaterOrEqual(t, f32[i], float32(-1))
		assert.Less(t, f32[i], float32(1))
		if f64[i] < 0 {
			neg++
		} else {
			pos++
		}
	}
	// Both signs appear.
	assert.Greater(t, neg, 4000)
	assert.Greater(t, pos, 4000)
}

func TestFillRandomEmpty(t *testing.T) {
	FillRandom([]float64{}, rand.New(rand.NewPCG(1, 1)))
}

func TestWorkerRandIsReproducible(t *testing.T) {
	x := make([]float64, 16)
	y := make([]float64, 16)
	FillRandom(x, workerRand(9, 3))
	FillRandom(y, workerRand(9, 3))
	assert.Equal(t, x, y)

	FillRandom(y, workerRand(9, 4))
	assert.NotEqual(t, x, y)
}

func TestFillConstant(t *testing.T) {
	x := make([]float32, 5)
	FillConstant(x, 2)
	assert.Equal(t, []float32{2, 2, 2, 2, 2}, x)
}
