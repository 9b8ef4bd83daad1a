// File: core/concurrency/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event is the blocking primitive shared by pool workers: a mutex and a
// condition variable with two wake modes. A NotifyOne issued while nobody
// waits is latched (auto-reset, at most one) so the next Wait returns at once.
// NotifyAll wakes every goroutine waiting at the time of the call.

package concurrency

import (
	"sync"

	"github.com/momentics/hioload-rt/api"
)

// Event implements api.Event.
type Event struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiters int
	signals int    // pending single wake-ups
	gen     uint64 // bumped by NotifyAll
	closed  bool
}

// NewEvent returns an initialised event.
func NewEvent() *Event {
	e := &Event{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Wait blocks until the event is signaled or closed.
func (e *Event) Wait() {
	e.WaitUnless(nil)
}

// WaitUnless blocks like Wait but returns as soon as stop reports true.
// stop is evaluated under the event lock, so a state change followed by
// NotifyAll cannot slip between the check and the sleep.
func (e *Event) WaitUnless(stop func() bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	gen := e.gen
	e.waiters++
	for !e.closed && e.gen == gen && e.signals == 0 && (stop == nil || !stop()) {
		e.cond.Wait()
	}
	e.waiters--

	switch {
	case e.closed, e.gen != gen:
	case stop != nil && stop():
	default:
		e.signals--
	}
}

// NotifyOne wakes a single waiter, or latches one wake-up if nobody waits.
func (e *Event) NotifyOne() {
	e.mu.Lock()
	limit := e.waiters
	if limit == 0 {
		limit = 1
	}
	if e.signals < limit {
		e.signals++
	}
	e.mu.Unlock()
	e.cond.Signal()
}

// NotifyAll wakes every current waiter.
func (e *Event) NotifyAll() {
	e.mu.Lock()
	e.gen++
	e.mu.Unlock()
	e.cond.Broadcast()
}

// Close wakes every waiter; later waits return immediately.
func (e *Event) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cond.Broadcast()
}

// Waiters returns the number of goroutines blocked in Wait.
func (e *Event) Waiters() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waiters
}

var _ api.Event = (*Event)(nil)
