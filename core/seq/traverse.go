// File: core/seq/traverse.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package seq

import "github.com/momentics/hioload-rt/api"

// TraverseHeadToTail applies v to every live element from index 0 upward and
// stops as soon as v returns false. It reports whether every element was
// visited.
func (s *Seq[T]) TraverseHeadToTail(ctx any, v api.Visitor[T]) bool {
	for idx := 0; idx < s.count; idx++ {
		if !v.Visit(ctx, &s.buf[idx]) {
			return false
		}
	}
	return true
}

// TraverseTailToHead is TraverseHeadToTail in reverse order.
func (s *Seq[T]) TraverseTailToHead(ctx any, v api.Visitor[T]) bool {
	for idx := s.count; idx != 0; idx-- {
		if !v.Visit(ctx, &s.buf[idx-1]) {
			return false
		}
	}
	return true
}
