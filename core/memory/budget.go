// File: core/memory/budget.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Budget bounds the bytes an allocator may hand out. Several containers may
// share one budget; accounting uses a single atomic counter.

package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-rt/api"
)

// Budget wraps an allocator with a byte limit.
type Budget[T any] struct {
	inner api.Allocator[T]
	limit int64
	used  atomic.Int64
	fails atomic.Uint64
}

// NewBudget limits inner to limit bytes. A nil inner uses the Go heap.
func NewBudget[T any](inner api.Allocator[T], limit int64) *Budget[T] {
	if inner == nil {
		inner = Heap[T]{}
	}
	return &Budget[T]{inner: inner, limit: limit}
}

// Alloc reserves n*sizeof(T) bytes from the budget before delegating.
func (b *Budget[T]) Alloc(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc %d elements: %w", n, api.ErrInvalidArgument)
	}
	bytes, ok := byteSize[T](n)
	if !ok {
		b.fails.Add(1)
		return nil, api.Wrap(api.ErrCodeAllocFailed, api.ErrAllocFailed).
			WithContext("elements", n)
	}
	size := int64(bytes)
	for {
		used := b.used.Load()
		if size > b.limit-used {
			b.fails.Add(1)
			return nil, api.Wrap(api.ErrCodeAllocFailed, api.ErrAllocFailed).
				WithContext("requested_bytes", size).
				WithContext("available_bytes", b.limit-used)
		}
		if b.used.CompareAndSwap(used, used+size) {
			break
		}
	}
	buf, err := b.inner.Alloc(n)
	if err != nil {
		b.used.Add(-size)
		b.fails.Add(1)
		return nil, err
	}
	return buf, nil
}

// Free returns buf to the inner allocator and credits the budget.
func (b *Budget[T]) Free(buf []T) {
	if len(buf) == 0 {
		return
	}
	b.used.Add(-int64(len(buf)) * int64(SizeOf[T]()))
	b.inner.Free(buf)
}

// Used returns the bytes currently handed out.
func (b *Budget[T]) Used() int64 {
	return b.used.Load()
}

// Failures returns the number of refused allocations.
func (b *Budget[T]) Failures() uint64 {
	return b.fails.Load()
}

var _ api.Allocator[int] = (*Budget[int])(nil)
