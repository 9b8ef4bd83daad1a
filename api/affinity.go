// Package api
// Author: momentics@gmail.com
//
// CPU affinity and thread pinning definitions.

package api

// Affinity controls execution on particular CPUs.
type Affinity interface {
	// Pin locks the calling goroutine to its OS thread and binds it to cpuID.
	Pin(cpuID int) error
	// Unpin removes affinity.
	Unpin() error
	// CPUs returns the CPUs the process is allowed to run on.
	CPUs() ([]int, error)
}
