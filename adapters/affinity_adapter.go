// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// Description:
//   Adapter implementing the api.Affinity interface, delegating to
//   the affinity package for CPU pinning of the calling thread.
//
// Package adapters provides glue code between the core API contracts
// and the platform implementation.

package adapters

import (
	"runtime"

	"github.com/momentics/hioload-rt/affinity"
	"github.com/momentics/hioload-rt/api"
)

// AffinityAdapter implements api.Affinity. Pin locks the calling goroutine
// to its OS thread; Unpin releases it.
type AffinityAdapter struct {
	currentCPU int
	pinned     bool
}

// NewAffinityAdapter creates an adapter with no binding.
func NewAffinityAdapter() *AffinityAdapter {
	return &AffinityAdapter{currentCPU: -1}
}

// Pin binds the calling thread to cpuID.
func (a *AffinityAdapter) Pin(cpuID int) error {
	runtime.LockOSThread()
	if err := affinity.SetAffinity(cpuID); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	a.currentCPU = cpuID
	a.pinned = true
	return nil
}

// Unpin clears the CPU binding, allowing the OS scheduler to migrate the thread.
func (a *AffinityAdapter) Unpin() error {
	if !a.pinned {
		return nil
	}
	err := affinity.ClearAffinity()
	runtime.UnlockOSThread()
	a.pinned = false
	a.currentCPU = -1
	return err
}

// CPUs returns the process CPU set.
func (a *AffinityAdapter) CPUs() ([]int, error) {
	return affinity.AllowedCPUs()
}

// Current returns the pinned CPU or -1.
func (a *AffinityAdapter) Current() int {
	return a.currentCPU
}

var _ api.Affinity = (*AffinityAdapter)(nil)
