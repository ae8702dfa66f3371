package stream

import (
	"math"
	"time"
)

// Clock supplies the timestamps that bracket each kernel pass. It is read
// only by the coordinating goroutine, outside the parallel region.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

const (
	// granularitySamples is the number of distinct clock changes observed
	granularitySamples = 20

	// maxSpin bounds the wait for a single clock change
	maxSpin = 1 << 20

	// MinCalibrationTicks is the shortest acceptable kernel pass, in clock ticks
	MinCalibrationTicks = 20
)

// Calibration describes the timer and the cost of one pass over A.
type Calibration struct {
	Granularity time.Duration `json:"granularity_ns"`
	Pass        time.Duration `json:"pass_ns"`
	Ticks       int64         `json:"ticks"`
}

// TooCoarse reports whether a pass lasts fewer than MinCalibrationTicks clock
// ticks, in which case the per-kernel timings are dominated by timer noise.
func (c Calibration) TooCoarse() bool {
	return c.Granularity > 0 && c.Ticks < MinCalibrationTicks
}

// MeasureGranularity estimates the clock resolution as the smallest positive
// difference between successive readings, over several samples. It returns 0
// if the clock never advances.
func MeasureGranularity(clock Clock) time.Duration {
	minDelta := time.Duration(math.MaxInt64)
	for i := 0; i < granularitySamples; i++ {
		t1 := clock.Now()
		var d time.Duration
		for spin := 0; spin < maxSpin; spin++ {
			if d = clock.Now().Sub(t1); d > 0 {
				break
			}
		}
		if d > 0 && d < minDelta {
			minDelta = d
		}
	}
	if minDelta == time.Duration(math.MaxInt64) {
		return 0
	}
	return minDelta
}

// newCalibration derives the tick count of a measured pass.
func newCalibration(granularity, pass time.Duration) Calibration {
	c := Calibration{Granularity: granularity, Pass: pass}
	if granularity > 0 {
		c.Ticks = int64(pass / granularity)
	}
	return c
}
