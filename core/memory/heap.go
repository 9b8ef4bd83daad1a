// File: core/memory/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package memory

import (
	"fmt"

	"github.com/momentics/hioload-rt/api"
)

// Heap allocates storage on the Go heap.
// Limit, when positive, caps a single allocation to Limit elements.
type Heap[T any] struct {
	Limit int
}

// Alloc returns a zeroed slice of n elements.
func (h Heap[T]) Alloc(n int) (buf []T, err error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc %d elements: %w", n, api.ErrInvalidArgument)
	}
	if h.Limit > 0 && n > h.Limit {
		return nil, api.Wrap(api.ErrCodeAllocFailed, api.ErrAllocFailed).
			WithContext("requested", n).
			WithContext("limit", h.Limit)
	}
	if n == 0 {
		return nil, nil
	}
	// makeslice panics when n*sizeof(T) overflows the address space.
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("alloc %d elements: %v: %w", n, r, api.ErrAllocFailed)
		}
	}()
	return make([]T, n), nil
}

// Free drops the reference; the garbage collector reclaims the storage.
func (Heap[T]) Free([]T) {}

var _ api.Allocator[int] = Heap[int]{}
