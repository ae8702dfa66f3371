package stream

import (
	"fmt"
	"strings"
)

// Kernel identifies one of the four streaming operations.
type Kernel int

const (
	Copy  Kernel = iota // c = a
	Scale               // b = s·c
	Add                 // c = a + b
	Triad               // a = b + s·c
)

// NumKernels is the number of kernels run per repetition.
const NumKernels = 4

// Kernels lists the kernels in execution order.
var Kernels = [NumKernels]Kernel{Copy, Scale, Add, Triad}

func (k Kernel) String() string {
	switch k {
	case Copy:
		return "Copy"
	case Scale:
		return "Scale"
	case Add:
		return "Add"
	case Triad:
		return "Triad"
	default:
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
}

// ParseKernel returns the kernel with the given name, ignoring case.
func ParseKernel(s string) (Kernel, error) {
	for _, k := range Kernels {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, NewConfigurationError("ParseKernel", fmt.Sprintf("unknown kernel %q", s))
}

// Touches is the number of array accesses per element (reads plus writes).
func (k Kernel) Touches() int {
	switch k {
	case Copy, Scale:
		return 2
	case Add, Triad:
		return 3
	default:
		return 0
	}
}

// Flops is the number of floating-point operations per element.
func (k Kernel) Flops() int {
	switch k {
	case Scale, Add:
		return 1
	case Triad:
		return 2
	default:
		return 0
	}
}

// Bytes is the memory traffic of one full pass over n elements.
func (k Kernel) Bytes(n, elemSize int) int64 {
	return int64(k.Touches()) * int64(n) * int64(elemSize)
}

// The kernel bodies below operate on the half-open range [lo, hi). Each
// element is read and written independently, so disjoint ranges can run
// concurrently.

func copyRange[T Float](c, a []T, lo, hi int) {
	copy(c[lo:hi], a[lo:hi])
}

func scaleRange[T Float](b, c []T, s T, lo, hi int) {
	b, c = b[lo:hi], c[lo:hi:hi]
	for j := range b {
		b[j] = s * c[j]
	}
}

func addRange[T Float](c, a, b []T, lo, hi int) {
	c, a, b = c[lo:hi], a[lo:hi:hi], b[lo:hi:hi]
	for j := range c {
		c[j] = a[j] + b[j]
	}
}

func triadRange[T Float](a, b, c []T, s T, lo, hi int) {
	a, b, c = a[lo:hi], b[lo:hi:hi], c[lo:hi:hi]
	for j := range a {
		a[j] = b[j] + T(s*c[j])
	}
}

// doubleRange is the calibration pass: a = 2·a.
func doubleRange[T Float](a []T, lo, hi int) {
	a = a[lo:hi]
	for j := range a {
		a[j] = 2 * a[j]
	}
}

// kernelFunc binds a kernel to concrete arrays so the pool can run it on a range.
func kernelFunc[T Float](k Kernel, a, b, c []T, s T) func(lo, hi int) {
	switch k {
	case Copy:
		return func(lo, hi int) { copyRange(c, a, lo, hi) }
	case Scale:
		return func(lo, hi int) { scaleRange(b, c, s, lo, hi) }
	case Add:
		return func(lo, hi int) { addRange(c, a, b, lo, hi) }
	case Triad:
		return func(lo, hi int) { triadRange(a, b, c, s, lo, hi) }
	}
	panic(fmt.Sprintf("stream: unknown kernel %d", int(k)))
}
