//go:build !linux
// +build !linux

// Package stream provides affinity stubs for non-Linux platforms
package stream

import "runtime"

// AllowedCPUs lists every logical CPU; affinity is not queried on this platform.
func AllowedCPUs() ([]int, error) {
	cpus := make([]int, runtime.NumCPU())
	for i := range cpus {
		cpus[i] = i
	}
	return cpus, nil
}

// pinThread is unsupported on non-Linux platforms
func pinThread(cpu int) error {
	return NewInstrumentationError("pinThread", "cpu pinning not supported on "+runtime.GOOS, nil)
}
