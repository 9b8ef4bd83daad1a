//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.
// sched_setaffinity(2) with pid 0 targets the calling thread.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setAffinityPlatform sets thread affinity to a given CPU for Linux.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

func resetAffinityPlatform(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity reset: %w", err)
	}
	return nil
}

func allowedCPUsPlatform() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}
	cpus := make([]int, 0, set.Count())
	for i, n := 0, set.Count(); n > 0; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
			n--
		}
	}
	return cpus, nil
}
