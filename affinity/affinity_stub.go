//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Platforms without a thread affinity syscall. Pinning reports
// api.ErrNotSupported and the allowed CPU set is unknown.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-rt/api"
)

func setAffinityPlatform(int) error {
	return fmt.Errorf("affinity: %w on this platform", api.ErrNotSupported)
}

func resetAffinityPlatform([]int) error {
	return nil
}

func allowedCPUsPlatform() ([]int, error) {
	return nil, api.ErrNotSupported
}
