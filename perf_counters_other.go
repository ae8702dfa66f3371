//go:build !linux
// +build !linux

// Package stream provides performance counter stubs for non-Linux platforms
package stream

// PerfCounter stub for non-Linux platforms
type PerfCounter struct{}

// NewPerfCounter reports that hardware counters are unavailable
func NewPerfCounter() (*PerfCounter, error) {
	return nil, ErrCountersUnsupported
}

// Start always fails on non-Linux platforms
func (pc *PerfCounter) Start() error {
	return ErrCountersUnsupported
}

// Stop returns no sample on non-Linux platforms
func (pc *PerfCounter) Stop() (*CounterSample, error) {
	return nil, ErrCountersUnsupported
}

// Close is a no-op
func (pc *PerfCounter) Close() error {
	return nil
}
