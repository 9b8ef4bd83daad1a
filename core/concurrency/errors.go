// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrNilEntry indicates a worker entry function was not supplied
	ErrNilEntry = errors.New("nil worker entry")

	// ErrThreadLimit indicates the spawner refused a thread over its live limit
	ErrThreadLimit = errors.New("thread limit reached")

	// ErrPinFailed indicates a spawned thread could not be bound to its CPU
	ErrPinFailed = errors.New("thread pinning failed")
)
