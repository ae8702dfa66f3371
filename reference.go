package stream

import "math"

// Canonical seeds. A is doubled once by the calibration pass before the
// timed loop, so the oracle starts from 2·CanonicalA.
const (
	CanonicalA = 1.0
	CanonicalB = 2.0
	CanonicalC = 0.0
)

// ReferenceState holds the expected contents of a single element of A, B and
// C after the kernel sequence has been applied N times.
type ReferenceState struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// step applies one repetition of copy, scale, add, triad to a single element.
// The conversions round each product before it is added, matching the
// kernels and keeping the compiler from contracting across statements into an
// FMA.
func step[T Float](a, b, c, s T) (T, T, T) {
	c = a
	b = T(s * c)
	c = a + b
	a = b + T(s*c)
	return a, b, c
}

// Replay runs the recurrence n times from an arbitrary starting element.
func Replay[T Float](a, b, c T, n int, s T) (T, T, T) {
	for k := 0; k < n; k++ {
		a, b, c = step(a, b, c, s)
	}
	return a, b, c
}

// Reference computes the oracle in the element type from the canonical seeds.
// Under canonical seeding it is bitwise equal to every element of the arrays
// after n repetitions.
func Reference[T Float](n int, s T) ReferenceState {
	a, b, c := T(CanonicalA), T(CanonicalB), T(CanonicalC)
	a = 2 * a
	a, b, c = Replay(a, b, c, n, s)
	return ReferenceState{A: float64(a), B: float64(b), C: float64(c)}
}

// ReferenceFor dispatches Reference on the configured precision.
func ReferenceFor(p Precision, n int, scalar float64) ReferenceState {
	if p == Float32 {
		return Reference(n, float32(scalar))
	}
	return Reference(n, scalar)
}

// GrowthFactor is the per-repetition multiplier of A: a' = s(2+s)·a.
func GrowthFactor(s float64) float64 {
	return s * (2 + s)
}

// Contractive reports whether repeated application shrinks the initial value.
// For the default scalar 3 the factor is 15, so the initial contents of A
// dominate the final state and are never forgotten.
func Contractive(s float64) bool {
	return math.Abs(GrowthFactor(s)) < 1
}

// Coefficients returns the exact-arithmetic linear map from the initial value
// of A to the final values of A, B and C after n ≥ 1 repetitions. B and C are
// overwritten before they are read, so their initial values do not appear.
func Coefficients(n int, s float64) (ka, kb, kc float64) {
	if n <= 0 {
		return 1, 0, 0
	}
	g := GrowthFactor(s)
	prev := math.Pow(g, float64(n-1))
	return prev * g, s * prev, (1 + s) * prev
}
