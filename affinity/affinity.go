// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_windows.go, etc.) guarded by build tags.
// All calls act on the calling OS thread; callers lock the goroutine to its
// thread with runtime.LockOSThread before pinning.

package affinity

import (
	"fmt"
	"slices"
	"sync"

	"github.com/momentics/hioload-rt/api"
)

var (
	allowedOnce sync.Once
	allowed     []int
	allowedErr  error
)

// SetAffinity pins current OS thread to a given logical CPU/core on supported platforms.
// On unsupported platforms returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	cpus, err := AllowedCPUs()
	if err != nil {
		return err
	}
	if !slices.Contains(cpus, cpuID) {
		return api.NewError(api.ErrCodeInvalidArgument, "cpu not in process affinity set").
			WithContext("cpu", cpuID)
	}
	return setAffinityPlatform(cpuID)
}

// ClearAffinity restores the process-wide CPU set on the current OS thread.
func ClearAffinity() error {
	cpus, err := AllowedCPUs()
	if err != nil {
		return err
	}
	return resetAffinityPlatform(cpus)
}

// AllowedCPUs returns the CPUs the process could run on at first use.
func AllowedCPUs() ([]int, error) {
	allowedOnce.Do(func() {
		allowed, allowedErr = allowedCPUsPlatform()
		if allowedErr != nil {
			allowedErr = fmt.Errorf("affinity: query cpu set: %w", allowedErr)
		}
	})
	return allowed, allowedErr
}
