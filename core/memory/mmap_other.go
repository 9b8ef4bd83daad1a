//go:build !linux
// +build !linux

// File: core/memory/mmap_other.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without the mmap allocator: storage comes from the
// Go heap, the relocatability contract is still enforced.

package memory

import (
	"fmt"

	"github.com/momentics/hioload-rt/api"
)

// Mmap falls back to heap storage on this platform.
type Mmap[T any] struct {
	heap Heap[T]
}

// NewMmap returns an allocator for T or ErrNotRelocatable.
func NewMmap[T any]() (*Mmap[T], error) {
	if !Relocatable[T]() {
		return nil, fmt.Errorf("mmap allocator: %w", api.ErrNotRelocatable)
	}
	return &Mmap[T]{}, nil
}

func (m *Mmap[T]) Alloc(n int) ([]T, error) { return m.heap.Alloc(n) }

func (m *Mmap[T]) Free(buf []T) { m.heap.Free(buf) }
