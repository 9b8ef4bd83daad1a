// File: core/concurrency/monitor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Monitor is the coordination record every worker of a Pool shares: the
// user payload, the wake event and the quit flag. Synchronisation of the
// payload's own fields is the payload's business.

package concurrency

import (
	"context"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Monitor is shared by reference among all workers of one pool run.
type Monitor[T any] struct {
	user T
	evts *Event

	_    cpu.CacheLinePad
	quit atomic.Int32
	_    cpu.CacheLinePad

	ctx    context.Context
	cancel context.CancelFunc
}

func newMonitor[T any](user T) *Monitor[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor[T]{
		user:   user,
		evts:   NewEvent(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// User returns the shared payload.
func (m *Monitor[T]) User() *T {
	return &m.user
}

// Event returns the shared event, e.g. for a worker to hand a wake-up on.
func (m *Monitor[T]) Event() *Event {
	return m.evts
}

// Quitting reports whether shutdown was requested.
func (m *Monitor[T]) Quitting() bool {
	return m.quit.Load() != 0
}

// Context is cancelled when shutdown is requested.
func (m *Monitor[T]) Context() context.Context {
	return m.ctx
}

// Park blocks the calling worker until it is woken. It returns immediately
// once shutdown was requested; workers re-check Quitting after every Park.
func (m *Monitor[T]) Park() {
	m.evts.WaitUnless(m.Quitting)
}

// requestQuit raises the quit flag and returns its new value.
func (m *Monitor[T]) requestQuit() int32 {
	n := m.quit.Add(1)
	m.cancel()
	return n
}
