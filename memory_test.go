package stream

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaLayout(t *testing.T) {
	for _, offset := range []int{0, 1, 7, 64} {
		arena, err := NewArena(1000, offset, 8)
		require.NoError(t, err)

		a := arenaView[float64](arena, 0)
		b := arenaView[float64](arena, 1)
		c := arenaView[float64](arena, 2)
		require.Len(t, a, 1000)
		require.Len(t, c, 1000)

		base := uintptr(unsafe.Pointer(&a[0]))
		assert.Zero(t, base%ArenaAlignment, "offset %d", offset)
		stride := uintptr((1000 + offset) * 8)
		assert.Equal(t, base+stride, uintptr(unsafe.Pointer(&b[0])))
		assert.Equal(t, base+2*stride, uintptr(unsafe.Pointer(&c[0])))

		// Arrays do not overlap.
		FillConstant(a, 1)
		FillConstant(b, 2)
		FillConstant(c, 3)
		assert.Equal(t, 1.0, a[999])
		assert.Equal(t, 2.0, b[0])

		assert.Equal(t, int64(8000), arena.ArrayBytes())
		require.NoError(t, arena.Close())
	}
}

func TestArenaFloat32(t *testing.T) {
	arena, err := NewArena(33, 3, 4)
	require.NoError(t, err)
	defer arena.Close()

	c := arenaView[float32](arena, 2)
	FillConstant(c, 5)
	assert.Equal(t, float32(5), c[32])

	assert.Panics(t, func() { arenaView[float64](arena, 0) })
}

func TestArenaBytes(t *testing.T) {
	size, err := ArenaBytes(1000, 10, 8)
	require.NoError(t, err)
	assert.Equal(t, 3*1010*8+ArenaAlignment, size)

	_, err = ArenaBytes(math.MaxInt/8, 0, 8)
	assert.True(t, IsAllocationError(err))

	_, err = ArenaBytes(0, 0, 8)
	assert.True(t, IsAllocationError(err))
}

func TestArenaCloseIsIdempotent(t *testing.T) {
	arena, err := NewArena(16, 0, 8)
	require.NoError(t, err)
	require.NoError(t, arena.Close())
	require.NoError(t, arena.Close())

	var nilArena *Arena
	assert.NoError(t, nilArena.Close())
}
