// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package api

// Releaser is implemented by element and payload types that own resources.
// Release is invoked exactly once per live value before its slot is reused
// or deallocated.
type Releaser interface {
	Release()
}

// Visitor is applied to every live element during a container traversal.
// Returning false stops the traversal.
type Visitor[T any] interface {
	Visit(ctx any, elem *T) bool
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc[T any] func(ctx any, elem *T) bool

// Visit calls f(ctx, elem).
func (f VisitorFunc[T]) Visit(ctx any, elem *T) bool {
	return f(ctx, elem)
}

// Allocator provides raw contiguous storage for n values of T.
// Returned slices have len == n and are zeroed.
type Allocator[T any] interface {
	Alloc(n int) ([]T, error)
	Free(buf []T)
}

// Event is a wait/notify primitive shared by worker threads.
type Event interface {
	// Wait blocks the caller until the event is signaled.
	Wait()
	// NotifyOne wakes a single waiter.
	NotifyOne()
	// NotifyAll wakes every waiter.
	NotifyAll()
	// Close releases the event; subsequent waits return immediately.
	Close()
}

// Handle refers to a spawned worker thread.
type Handle interface {
	// ID returns a unique identifier of the thread.
	ID() string
	// Join blocks until the thread has exited.
	Join()
}

// Spawner starts worker threads.
type Spawner interface {
	// Spawn runs entry on a new thread. stackSize is a hint; zero means default.
	Spawn(entry func(), stackSize int) (Handle, error)
}
