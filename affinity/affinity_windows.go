//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific implementation for setting thread CPU affinity.

package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

func setThreadMask(mask uintptr) error {
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if ret == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask: %w", err)
	}
	return nil
}

// setAffinityPlatform sets thread affinity to a given CPU for Windows.
func setAffinityPlatform(cpuID int) error {
	return setThreadMask(uintptr(1) << cpuID)
}

func resetAffinityPlatform(cpus []int) error {
	var mask uintptr
	for _, c := range cpus {
		mask |= uintptr(1) << c
	}
	return setThreadMask(mask)
}

// allowedCPUsPlatform reports the first processor group only.
func allowedCPUsPlatform() ([]int, error) {
	n := runtime.NumCPU()
	if n > 64 {
		n = 64
	}
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return cpus, nil
}
