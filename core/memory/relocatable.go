// File: core/memory/relocatable.go
// Package memory provides raw storage allocators for contiguous containers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Containers in hioload-rt relocate elements by plain value copy. Storage that
// lives outside the Go heap additionally requires element types without
// pointers, otherwise the garbage collector could miss live references.

package memory

import (
	"math"
	"reflect"
	"unsafe"
)

// Relocatable reports whether T holds no pointers and can therefore be moved
// by byte copy into memory the garbage collector does not scan.
func Relocatable[T any]() bool {
	return pointerFree(reflect.TypeOf((*T)(nil)).Elem())
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SizeOf returns the size in bytes of a single T.
func SizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// byteSize returns n*SizeOf[T]() or false when the product overflows int.
func byteSize[T any](n int) (int, bool) {
	size := int(SizeOf[T]())
	if n < 0 || (size > 0 && n > math.MaxInt/size) {
		return 0, false
	}
	return n * size, true
}
