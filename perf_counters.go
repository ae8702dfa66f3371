// Package stream region-of-interest counter capture around the timed loop
package stream

import (
	"fmt"
	"strings"
)

//go:generate mockgen -source=perf_counters.go -destination=mock_region_counter_test.go -package=stream

// RegionCounter captures hardware counters between Start and Stop on the
// calling OS thread. The harness runs one per worker, calling Start on every
// worker immediately before the first timed repetition and Stop immediately
// after the last, outside any per-kernel timing.
type RegionCounter interface {
	Start() error
	Stop() (*CounterSample, error)
}

// CounterFactory returns a new, unstarted RegionCounter. It is called once per
// worker, on that worker's thread.
type CounterFactory func() (RegionCounter, error)

// PerfCounters is the CounterFactory for perf_event_open hardware counters.
func PerfCounters() (RegionCounter, error) {
	pc, err := NewPerfCounter()
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// CounterSample holds the counter deltas for one region.
type CounterSample struct {
	Cycles          uint64 `json:"cycles"`
	Instructions    uint64 `json:"instructions"`
	CacheReferences uint64 `json:"cache_references"`
	CacheMisses     uint64 `json:"cache_misses"`
	L1DMisses       uint64 `json:"l1d_read_misses"`
	LLCMisses       uint64 `json:"llc_read_misses"`

	// Derived metrics
	IPC           float64 `json:"ipc"`
	CacheMissRate float64 `json:"cache_miss_rate"`
}

// derive fills the ratio fields
func (cs *CounterSample) derive() {
	if cs.Cycles > 0 {
		cs.IPC = float64(cs.Instructions) / float64(cs.Cycles)
	}
	if cs.CacheReferences > 0 {
		cs.CacheMissRate = float64(cs.CacheMisses) / float64(cs.CacheReferences)
	}
}

// add accumulates the raw counts of o. Ratios are recomputed by derive.
func (cs *CounterSample) add(o *CounterSample) {
	cs.Cycles += o.Cycles
	cs.Instructions += o.Instructions
	cs.CacheReferences += o.CacheReferences
	cs.CacheMisses += o.CacheMisses
	cs.L1DMisses += o.L1DMisses
	cs.LLCMisses += o.LLCMisses
}

// String formats counters for display
func (cs *CounterSample) String() string {
	var sb strings.Builder

	sb.WriteString("Performance Counters:\n")
	if cs.Cycles > 0 {
		sb.WriteString(fmt.Sprintf("  CPU Cycles:        %d\n", cs.Cycles))
		sb.WriteString(fmt.Sprintf("  Instructions:      %d\n", cs.Instructions))
		sb.WriteString(fmt.Sprintf("  IPC:               %.2f\n", cs.IPC))
	}
	if cs.CacheReferences > 0 {
		sb.WriteString(fmt.Sprintf("  Cache References:  %d\n", cs.CacheReferences))
		sb.WriteString(fmt.Sprintf("  Cache Misses:      %d\n", cs.CacheMisses))
		sb.WriteString(fmt.Sprintf("  Cache Miss Rate:   %.2f%%\n", cs.CacheMissRate*100))
	}
	if cs.L1DMisses > 0 {
		sb.WriteString(fmt.Sprintf("  L1D Read Misses:   %d\n", cs.L1DMisses))
	}
	if cs.LLCMisses > 0 {
		sb.WriteString(fmt.Sprintf("  LLC Read Misses:   %d\n", cs.LLCMisses))
	}
	return sb.String()
}
