//go:build linux
// +build linux

// Package stream provides Linux CPU affinity for worker threads
package stream

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AllowedCPUs returns the logical CPUs this process may run on, in order.
func AllowedCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, NewInstrumentationError("AllowedCPUs", "sched_getaffinity failed", err)
	}
	cpus := make([]int, 0, set.Count())
	for cpu := 0; len(cpus) < set.Count(); cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

// pinThread binds the calling OS thread to a single CPU. The caller must
// hold runtime.LockOSThread.
func pinThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return NewInstrumentationError("pinThread", fmt.Sprintf("cannot pin to cpu %d", cpu), err)
	}
	return nil
}
