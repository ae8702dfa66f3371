package stream

import (
	"fmt"
	"math"
	"strings"
)

// Float is the set of element types the harness can run with.
type Float interface {
	~float32 | ~float64
}

// Precision selects the element type by its width in bytes.
type Precision int

const (
	Float32 Precision = 4 // single precision
	Float64 Precision = 8 // double precision
)

// Size returns the element width in bytes.
func (p Precision) Size() int {
	return int(p)
}

// Valid reports whether p names a supported element width.
func (p Precision) Valid() bool {
	return p == Float32 || p == Float64
}

// Epsilon returns the average relative error threshold used by validation.
func (p Precision) Epsilon() float64 {
	switch p {
	case Float32:
		return 1e-6
	case Float64:
		return 1e-13
	default:
		// same fallback the C harness used for odd widths
		return 1e-6
	}
}

// MaxValue is the largest finite element value.
func (p Precision) MaxValue() float64 {
	if p == Float32 {
		return math.MaxFloat32
	}
	return math.MaxFloat64
}

func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// ParsePrecision accepts float32/single/4 and float64/double/8.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "single", "f32", "4":
		return Float32, nil
	case "float64", "double", "f64", "8":
		return Float64, nil
	}
	return 0, NewConfigurationError("ParsePrecision", fmt.Sprintf("unknown precision %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (p Precision) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, ErrUnsupportedPrecision
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Precision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
