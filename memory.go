package stream

import (
	"fmt"
	"math"
	"unsafe"
)

// NumArrays is the number of working arrays (A, B, C).
const NumArrays = 3

// Arena is a single aligned allocation holding the three working arrays.
// Array i starts i·(length+offset) elements after the aligned base, so a
// non-zero offset shifts the relative alignment of A, B and C the same way
// padding the static arrays did in the C benchmark.
type Arena struct {
	buf      []byte
	base     int
	length   int
	offset   int
	elemSize int
	release  func([]byte) error
	closed   bool
}

// ArenaBytes returns the bytes needed for three padded arrays, or an error
// if the size does not fit in an int.
func ArenaBytes(length, offset, elemSize int) (int, error) {
	if length <= 0 || offset < 0 || elemSize <= 0 {
		return 0, NewAllocationError("ArenaBytes",
			fmt.Sprintf("invalid layout: length=%d offset=%d elem=%d", length, offset, elemSize), nil)
	}
	perArray := int64(length) + int64(offset)
	limit := (int64(math.MaxInt) - ArenaAlignment) / int64(NumArrays*elemSize)
	if perArray > limit {
		return 0, NewAllocationError("ArenaBytes",
			fmt.Sprintf("%d elements per array overflows the address space", perArray), nil)
	}
	return int(perArray*int64(NumArrays*elemSize)) + ArenaAlignment, nil
}

// NewArena allocates the backing region for three arrays of length elements.
func NewArena(length, offset, elemSize int) (*Arena, error) {
	size, err := ArenaBytes(length, offset, elemSize)
	if err != nil {
		return nil, err
	}

	buf, release, err := mapRegion(size)
	if err != nil {
		return nil, NewAllocationError("NewArena",
			fmt.Sprintf("cannot obtain %d bytes for working arrays", size), err)
	}

	// Round up to alignment
	addr := uintptr(unsafe.Pointer(&buf[0]))
	base := int((ArenaAlignment - addr%ArenaAlignment) % ArenaAlignment)

	return &Arena{
		buf:      buf,
		base:     base,
		length:   length,
		offset:   offset,
		elemSize: elemSize,
		release:  release,
	}, nil
}

// Size returns the mapped size in bytes.
func (a *Arena) Size() int {
	return len(a.buf)
}

// ArrayBytes returns the bytes occupied by one unpadded array.
func (a *Arena) ArrayBytes() int64 {
	return int64(a.length) * int64(a.elemSize)
}

// Close releases the region. Views obtained from the arena must not be used
// afterwards.
func (a *Arena) Close() error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true
	if err := a.release(a.buf); err != nil {
		return NewAllocationError("Arena.Close", "cannot release working arrays", err)
	}
	a.buf = nil
	return nil
}

// arenaView returns array i (0=A, 1=B, 2=C) as a slice of T.
func arenaView[T Float](a *Arena, i int) []T {
	var zero T
	if int(unsafe.Sizeof(zero)) != a.elemSize {
		panic(fmt.Sprintf("stream: arena element size %d does not match %T", a.elemSize, zero))
	}
	start := a.base + i*(a.length+a.offset)*a.elemSize
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[start])), a.length)
}
