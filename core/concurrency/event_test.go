// File: core/concurrency/event_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEvent_NotifyOneLatched(t *testing.T) {
	e := NewEvent()
	e.NotifyOne()
	e.NotifyOne() // latch holds at most one wake-up

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("latched NotifyOne was lost")
	}

	second := make(chan struct{})
	go func() {
		e.Wait()
		close(second)
	}()
	waitFor(t, "second waiter", func() bool { return e.Waiters() == 1 })
	select {
	case <-second:
		t.Fatal("latch released more than one waiter")
	case <-time.After(20 * time.Millisecond):
	}
	e.NotifyOne()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("NotifyOne did not wake the waiter")
	}
}

func TestEvent_NotifyOneWakesOne(t *testing.T) {
	e := NewEvent()
	const n = 4
	var woken atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Wait()
			woken.Add(1)
		}()
	}
	waitFor(t, "waiters", func() bool { return e.Waiters() == n })

	e.NotifyOne()
	waitFor(t, "one wake-up", func() bool { return woken.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	if got := woken.Load(); got != 1 {
		t.Fatalf("Expected exactly one waiter woken, got %d", got)
	}

	e.NotifyAll()
	wg.Wait()
	if got := woken.Load(); got != n {
		t.Fatalf("Expected %d waiters woken, got %d", n, got)
	}
}

func TestEvent_CloseReleasesWaiters(t *testing.T) {
	e := NewEvent()
	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	waitFor(t, "waiter", func() bool { return e.Waiters() == 1 })
	e.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not release waiter")
	}
	e.Wait() // must not block after Close
}

func TestEvent_WaitUnless(t *testing.T) {
	e := NewEvent()
	var stop atomic.Bool
	stop.Store(true)
	e.WaitUnless(stop.Load) // returns immediately

	stop.Store(false)
	done := make(chan struct{})
	go func() {
		e.WaitUnless(stop.Load)
		close(done)
	}()
	waitFor(t, "waiter", func() bool { return e.Waiters() == 1 })
	stop.Store(true)
	e.NotifyAll()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitUnless did not return after stop + NotifyAll")
	}
}
