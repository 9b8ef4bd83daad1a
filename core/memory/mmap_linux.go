//go:build linux
// +build linux

// File: core/memory/mmap_linux.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous-mapping allocator. Storage lives outside the Go heap, so only
// pointer-free element types are accepted.

package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-rt/api"
)

// Mmap allocates element storage with mmap(2).
type Mmap[T any] struct {
	size uintptr
}

// NewMmap returns an mmap allocator for T or ErrNotRelocatable.
func NewMmap[T any]() (*Mmap[T], error) {
	if !Relocatable[T]() {
		return nil, fmt.Errorf("mmap allocator: %w", api.ErrNotRelocatable)
	}
	return &Mmap[T]{size: SizeOf[T]()}, nil
}

// Alloc maps n zeroed elements.
func (m *Mmap[T]) Alloc(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc %d elements: %w", n, api.ErrInvalidArgument)
	}
	if n == 0 || m.size == 0 {
		return make([]T, n), nil
	}
	bytes, ok := byteSize[T](n)
	if !ok {
		return nil, api.Wrap(api.ErrCodeAllocFailed, api.ErrAllocFailed).
			WithContext("elements", n)
	}
	b, err := unix.Mmap(-1, 0, bytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %v: %w", bytes, err, api.ErrAllocFailed)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// Free unmaps buf. buf must be a slice returned by Alloc.
func (m *Mmap[T]) Free(buf []T) {
	if len(buf) == 0 || m.size == 0 {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*int(m.size))
	_ = unix.Munmap(b)
}

var _ api.Allocator[int] = (*Mmap[int])(nil)
