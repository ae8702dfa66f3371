//go:build linux
// +build linux

// Package stream provides Linux-specific performance counter implementation
package stream

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

type perfEventConfig struct {
	name   string
	typ    uint32
	config uint64
}

// cacheConfig creates a cache event configuration
func cacheConfig(cache, op, result int) uint64 {
	return uint64(cache) | (uint64(op) << 8) | (uint64(result) << 16)
}

var perfEvents = []perfEventConfig{
	{"cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	{"instructions", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
	{"cache-references", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES},
	{"cache-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
	{"L1-dcache-read-misses", unix.PERF_TYPE_HW_CACHE, cacheConfig(unix.PERF_COUNT_HW_CACHE_L1D, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
	{"LLC-read-misses", unix.PERF_TYPE_HW_CACHE, cacheConfig(unix.PERF_COUNT_HW_CACHE_LL, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
}

// PerfCounter reads hardware counters through perf_event_open. Events are
// opened for the OS thread that calls Start and count only that thread, so
// the caller must stay locked to it until Stop. The harness starts one
// PerfCounter on each worker of its pool and sums the samples.
type PerfCounter struct {
	fds []int
}

// NewPerfCounter returns an unstarted counter.
func NewPerfCounter() (*PerfCounter, error) {
	return &PerfCounter{}, nil
}

// Start opens, resets and enables every event for the calling thread. Events
// the kernel or PMU rejects are skipped; Start fails only if none can be
// opened.
func (pc *PerfCounter) Start() error {
	pc.close()

	pc.fds = make([]int, len(perfEvents))
	opened := 0
	var firstErr error
	for i, ev := range perfEvents {
		attr := unix.PerfEventAttr{
			Type:   ev.typ,
			Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
			Config: ev.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			pc.fds[i] = -1
			if firstErr == nil {
				firstErr = fmt.Errorf("perf event %s: %w", ev.name, err)
			}
			continue
		}
		pc.fds[i] = fd
		opened++
	}
	if opened == 0 {
		pc.fds = nil
		return NewInstrumentationError("PerfCounter.Start", "no hardware counters could be opened", firstErr)
	}

	for _, fd := range pc.fds {
		if fd < 0 {
			continue
		}
		_ = unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0)
		_ = unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0)
	}
	return nil
}

// Stop disables the events, reads them and closes the descriptors.
func (pc *PerfCounter) Stop() (*CounterSample, error) {
	if len(pc.fds) == 0 {
		return nil, NewInstrumentationError("PerfCounter.Stop", "counters were not started", nil)
	}
	for _, fd := range pc.fds {
		if fd >= 0 {
			_ = unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0)
		}
	}

	sample := &CounterSample{}
	var buf [8]byte
	for i, fd := range pc.fds {
		if fd < 0 {
			continue
		}
		n, err := unix.Read(fd, buf[:])
		if err != nil || n != len(buf) {
			continue
		}
		value := binary.NativeEndian.Uint64(buf[:])
		switch perfEvents[i].name {
		case "cycles":
			sample.Cycles = value
		case "instructions":
			sample.Instructions = value
		case "cache-references":
			sample.CacheReferences = value
		case "cache-misses":
			sample.CacheMisses = value
		case "L1-dcache-read-misses":
			sample.L1DMisses = value
		case "LLC-read-misses":
			sample.LLCMisses = value
		}
	}
	pc.close()

	sample.derive()
	return sample, nil
}

// Close releases any open descriptors.
func (pc *PerfCounter) Close() error {
	pc.close()
	return nil
}

func (pc *PerfCounter) close() {
	for _, fd := range pc.fds {
		if fd >= 0 {
			unix.Close(fd)
		}
	}
	pc.fds = nil
}
