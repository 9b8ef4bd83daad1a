// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and statistics DTOs.

package api

// PoolState enumerates the lifecycle of a worker pool.
type PoolState int

const (
	PoolIdle PoolState = iota
	PoolRunning
	PoolStopping
	PoolStopped
)

func (s PoolState) String() string {
	switch s {
	case PoolIdle:
		return "idle"
	case PoolRunning:
		return "running"
	case PoolStopping:
		return "stopping"
	case PoolStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PoolStats reports the worker pool accounting.
type PoolStats struct {
	State         PoolState
	Max           int    // hard bound on workers
	Active        int    // slots populated at start
	Running       int    // handles that spawned successfully
	SpawnFailures int    // slots left empty
	Wakeups       uint64 // NotifyOne calls issued through Wakeup
}

// SeqStats reports the allocation history of a sequence container.
type SeqStats struct {
	Len          int
	Cap          int
	Grows        uint64 // successful capacity increases
	Shrinks      uint64 // successful NoGrow reallocations
	AllocFailure uint64 // allocations refused by the allocator
	Released     uint64 // release hooks invoked
}
