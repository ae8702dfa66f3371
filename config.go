// Package stream configuration for a single benchmark invocation
package stream

import (
	"fmt"
	"math"
	"strings"
)

// Sizing defaults. The array should be at least four times the size of the
// last-level cache for the reported rates to reflect memory, not cache.
const (
	// DefaultArrayLength is large enough for caches up to 20MB
	DefaultArrayLength = 10_000_000

	// DefaultRepetitions is the number of times each kernel runs
	DefaultRepetitions = 10

	// MinRepetitions leaves one sample after the first is discarded
	MinRepetitions = 2

	// DefaultScalar multiplies in the scale and triad kernels
	DefaultScalar = 3.0

	// DefaultMaxOffenders bounds the per-array list of failing indices
	DefaultMaxOffenders = 10

	// CacheSizeMultiple is the sizing guideline relative to the LLC
	CacheSizeMultiple = 4
)

// Memory layout
const (
	// ArenaAlignment aligns the start of the arena (cache line)
	ArenaAlignment = 64
)

// SeedPolicy decides how the working arrays are filled before the run.
type SeedPolicy int

const (
	// SeedCanonical fills A=1, B=2, C=0 so every element matches the oracle bitwise
	SeedCanonical SeedPolicy = iota
	// SeedRandom fills uniformly in [-1,1) and validates by per-element replay
	SeedRandom
)

func (s SeedPolicy) String() string {
	switch s {
	case SeedCanonical:
		return "canonical"
	case SeedRandom:
		return "random"
	default:
		return fmt.Sprintf("SeedPolicy(%d)", int(s))
	}
}

// ParseSeedPolicy parses "canonical" or "random".
func ParseSeedPolicy(s string) (SeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "canonical", "":
		return SeedCanonical, nil
	case "random":
		return SeedRandom, nil
	}
	return 0, NewConfigurationError("ParseSeedPolicy", fmt.Sprintf("unknown seed policy %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (s SeedPolicy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SeedPolicy) UnmarshalText(b []byte) error {
	v, err := ParseSeedPolicy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Config is the immutable run configuration consumed by the harness.
type Config struct {
	ArrayLength  int        `json:"array_length"`
	Repetitions  int        `json:"repetitions"`
	Precision    Precision  `json:"precision"`
	Offset       int        `json:"offset"` // padding elements after each array
	Scalar       float64    `json:"scalar"`
	Workers      int        `json:"workers"` // 0 means GOMAXPROCS
	SeedPolicy   SeedPolicy `json:"seed_policy"`
	Seed         uint64     `json:"seed"`
	PinCPUs      bool       `json:"pin_cpus"`
	MaxOffenders int        `json:"max_offenders"`
}

// DefaultConfig returns the reference configuration: 10M doubles, 10 repetitions.
func DefaultConfig() Config {
	return Config{
		ArrayLength:  DefaultArrayLength,
		Repetitions:  DefaultRepetitions,
		Precision:    Float64,
		Scalar:       DefaultScalar,
		SeedPolicy:   SeedCanonical,
		Seed:         1,
		MaxOffenders: DefaultMaxOffenders,
	}
}

// Validate rejects configurations for which timing or validation is undefined.
func (c Config) Validate() error {
	if c.ArrayLength <= 0 {
		return ErrEmptyArray
	}
	if c.Repetitions < MinRepetitions {
		return ErrTooFewRepetitions
	}
	if !c.Precision.Valid() {
		return ErrUnsupportedPrecision
	}
	if c.Offset < 0 {
		return NewConfigurationError("Config", "offset must not be negative")
	}
	if c.Workers < 0 {
		return NewConfigurationError("Config", "worker count must not be negative")
	}
	if c.MaxOffenders < 0 {
		return NewConfigurationError("Config", "max offenders must not be negative")
	}
	if c.SeedPolicy != SeedCanonical && c.SeedPolicy != SeedRandom {
		return NewConfigurationError("Config", fmt.Sprintf("unknown seed policy %d", int(c.SeedPolicy)))
	}
	if math.IsNaN(c.Scalar) || math.IsInf(c.Scalar, 0) {
		return NewConfigurationError("Config", "scalar must be finite")
	}
	if GrowthFactor(c.Scalar) == 0 {
		return NewConfigurationError("Config",
			fmt.Sprintf("scalar %g collapses every array to zero", c.Scalar))
	}
	if limit := MaxRepetitions(c.Precision, c.Scalar); c.Repetitions > limit {
		return NewConfigurationError("Config",
			fmt.Sprintf("%d repetitions overflow %s with scalar %g (max %d)",
				c.Repetitions, c.Precision, c.Scalar, limit))
	}
	return nil
}

// workers resolves the worker count against the array length.
func (c Config) workers(procs int) int {
	n := c.Workers
	if n == 0 {
		n = procs
	}
	if n > c.ArrayLength {
		n = c.ArrayLength
	}
	if n < 1 {
		n = 1
	}
	return n
}

// MaxRepetitions is the largest N for which every value the canonical run
// produces stays finite in the given precision. Non-expanding scalars are
// unbounded.
func MaxRepetitions(p Precision, scalar float64) int {
	g := math.Abs(GrowthFactor(scalar))
	if g <= 1 {
		return math.MaxInt32
	}
	// Within the last repetition the largest value is m·a_{N-1}, where m is
	// the largest of the per-kernel multipliers applied to a.
	s := math.Abs(scalar)
	m := math.Max(math.Max(1, s), math.Max(math.Abs(1+scalar), math.Abs(scalar*(1+scalar))))
	m = math.Max(m, g)
	limit := 1 + (math.Log(p.MaxValue())-math.Log(2*m))/math.Log(g)
	return int(math.Floor(limit))
}
