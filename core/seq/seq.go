// File: core/seq/seq.go
// Package seq implements a growable contiguous sequence container.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Seq owns a single buffer of capacity slots obtained from an api.Allocator.
// Slots [0, Len) are live, slots [Len, Cap) are zeroed backing storage.
// Elements are relocated by value copy, so T must be trivially relocatable;
// storage outside the Go heap (memory.Mmap) further requires pointer-free T.
// Seq is NOT thread-safe.

package seq

import (
	"fmt"

	"github.com/momentics/hioload-rt/api"
	"github.com/momentics/hioload-rt/core/memory"
)

// Seq is a contiguous container of T with explicit capacity control.
type Seq[T any] struct {
	buf     []T // len(buf) == capacity
	count   int
	alloc   api.Allocator[T]
	release func(*T)

	grows    uint64
	shrinks  uint64
	failures uint64
	released uint64
}

// Option configures a Seq at construction.
type Option[T any] func(*Seq[T])

// WithAllocator sets the storage allocator. Default is memory.Heap.
func WithAllocator[T any](a api.Allocator[T]) Option[T] {
	return func(s *Seq[T]) {
		if a != nil {
			s.alloc = a
		}
	}
}

// WithRelease overrides the release hook invoked on every element leaving the
// container without being handed to the caller.
func WithRelease[T any](fn func(*T)) Option[T] {
	return func(s *Seq[T]) {
		s.release = fn
	}
}

// New returns an empty container with zero capacity.
func New[T any](opts ...Option[T]) *Seq[T] {
	s := &Seq[T]{alloc: memory.Heap[T]{}, release: defaultRelease[T]()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCounted returns a container holding n zero-valued live elements.
// On failure the returned container is empty and safe to Free.
func NewCounted[T any](n int, opts ...Option[T]) (*Seq[T], error) {
	s := New(opts...)
	return s, s.InitCounted(n)
}

// defaultRelease calls (*T).Release when T implements api.Releaser.
func defaultRelease[T any]() func(*T) {
	if _, ok := any((*T)(nil)).(api.Releaser); !ok {
		return nil
	}
	return func(p *T) {
		any(p).(api.Releaser).Release()
	}
}

// Init resets the container to empty with zero capacity. It does not release
// anything; call Free first if the container holds elements.
func (s *Seq[T]) Init() {
	s.buf = nil
	s.count = 0
}

// InitCounted resets the container and zero-fills n live slots.
// On failure the container is left empty.
func (s *Seq[T]) InitCounted(n int) error {
	s.Init()
	if n < 0 {
		return fmt.Errorf("init %d elements: %w", n, api.ErrInvalidArgument)
	}
	if err := s.Reserve(n); err != nil {
		return err
	}
	// Allocators hand out zeroed storage.
	s.count = n
	return nil
}

// Free releases every live element and returns the buffer to the allocator.
// The container must be re-initialised before reuse.
func (s *Seq[T]) Free() {
	if s.buf != nil {
		s.clean()
		s.alloc.Free(s.buf)
	}
	s.buf = nil
	s.count = 0
}

// Clear releases every live element and keeps the capacity.
func (s *Seq[T]) Clear() {
	s.clean()
	s.count = 0
}

// clean releases live elements tail first and zeroes their slots.
func (s *Seq[T]) clean() {
	for idx := s.count; idx != 0; idx-- {
		s.releaseAt(idx - 1)
	}
}

func (s *Seq[T]) releaseAt(idx int) {
	if s.release != nil {
		s.release(&s.buf[idx])
		s.released++
	}
	var zero T
	s.buf[idx] = zero
}

// Data returns a view of the live elements. The view is invalidated by any
// operation that changes the capacity.
func (s *Seq[T]) Data() []T {
	return s.buf[:s.count:s.count]
}

// Len returns the number of live elements.
func (s *Seq[T]) Len() int {
	return s.count
}

// Cap returns the number of allocated slots.
func (s *Seq[T]) Cap() int {
	return len(s.buf)
}

// Reserve grows the capacity to exactly size if it is currently smaller.
// It never shrinks. On allocation failure the container is unchanged.
func (s *Seq[T]) Reserve(size int) error {
	if size <= len(s.buf) {
		return nil
	}
	tmp, err := s.alloc.Alloc(size)
	if err != nil {
		s.failures++
		return fmt.Errorf("reserve %d slots: %w", size, err)
	}
	if s.buf != nil {
		copy(tmp, s.buf[:s.count])
		s.alloc.Free(s.buf)
	}
	s.buf = tmp
	s.grows++
	return nil
}

// NoGrow shrinks the capacity to Len. An empty container drops its buffer.
// On allocation failure the container is unchanged.
func (s *Seq[T]) NoGrow() error {
	if s.count == len(s.buf) {
		return nil
	}
	if s.count == 0 {
		s.alloc.Free(s.buf)
		s.buf = nil
		s.shrinks++
		return nil
	}
	tmp, err := s.alloc.Alloc(s.count)
	if err != nil {
		s.failures++
		return fmt.Errorf("shrink to %d slots: %w", s.count, err)
	}
	copy(tmp, s.buf[:s.count])
	s.alloc.Free(s.buf)
	s.buf = tmp
	s.shrinks++
	return nil
}

// Stats returns the allocation counters of the container.
func (s *Seq[T]) Stats() api.SeqStats {
	return api.SeqStats{
		Len:          s.count,
		Cap:          len(s.buf),
		Grows:        s.grows,
		Shrinks:      s.shrinks,
		AllocFailure: s.failures,
		Released:     s.released,
	}
}
