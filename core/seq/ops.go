// File: core/seq/ops.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Element access and positional mutation. Pointer results are nil on
// failure; a nil from Append/Insert means either allocation failure or a
// full container in fixed-capacity mode.

package seq

// Get returns the slot at idx without bounds checking against Len.
// Callers must guarantee idx < Len.
func (s *Seq[T]) Get(idx int) *T {
	return &s.buf[idx]
}

// GetInto is Get that also copies the element into out when out != nil.
func (s *Seq[T]) GetInto(idx int, out *T) *T {
	p := &s.buf[idx]
	if out != nil {
		*out = *p
	}
	return p
}

// GetSafe returns the element at idx or nil when idx is out of range.
func (s *Seq[T]) GetSafe(idx int) *T {
	return s.GetSafeInto(idx, nil)
}

// GetSafeInto is GetSafe that also copies the element into out.
func (s *Seq[T]) GetSafeInto(idx int, out *T) *T {
	if idx < 0 || idx >= s.count {
		return nil
	}
	return s.GetInto(idx, out)
}

// Append adds obj at the tail, growing the buffer to cap*2+1 when full.
func (s *Seq[T]) Append(obj T) *T {
	return s.append(obj, true)
}

// AppendNoGrow adds obj at the tail; it fails instead of reallocating.
func (s *Seq[T]) AppendNoGrow(obj T) *T {
	return s.append(obj, false)
}

func (s *Seq[T]) append(obj T, grow bool) *T {
	if !s.room(grow) {
		return nil
	}
	ret := &s.buf[s.count]
	*ret = obj
	s.count++
	return ret
}

// Insert places obj before idx, shifting the tail up by one slot.
// An idx at or past Len appends; a negative idx inserts at the head.
func (s *Seq[T]) Insert(idx int, obj T) *T {
	return s.insert(idx, obj, true)
}

// InsertNoGrow is Insert in fixed-capacity mode.
func (s *Seq[T]) InsertNoGrow(idx int, obj T) *T {
	return s.insert(idx, obj, false)
}

// PushHead inserts obj at index 0.
func (s *Seq[T]) PushHead(obj T) *T {
	return s.insert(0, obj, true)
}

// PushHeadNoGrow inserts obj at index 0 in fixed-capacity mode.
func (s *Seq[T]) PushHeadNoGrow(obj T) *T {
	return s.insert(0, obj, false)
}

func (s *Seq[T]) insert(idx int, obj T, grow bool) *T {
	if !s.room(grow) {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= s.count {
		idx = s.count
	} else {
		copy(s.buf[idx+1:s.count+1], s.buf[idx:s.count])
	}
	s.count++
	ret := &s.buf[idx]
	*ret = obj
	return ret
}

// room ensures one free slot, growing when allowed.
func (s *Seq[T]) room(grow bool) bool {
	if s.count < len(s.buf) {
		return true
	}
	if !grow {
		return false
	}
	return s.Reserve(len(s.buf)*2+1) == nil
}

// Delete releases the element at idx and compacts the tail down by one slot.
// Out-of-range indices are ignored.
func (s *Seq[T]) Delete(idx int) {
	if idx < 0 || idx >= s.count {
		return
	}
	s.releaseAt(idx)
	s.count--
	if s.count > idx {
		copy(s.buf[idx:s.count], s.buf[idx+1:s.count+1])
		var zero T
		s.buf[s.count] = zero
	}
}

// Pop removes the last element. When out != nil the element is moved into
// out and not released; otherwise the release hook runs. Returns false when
// the container is empty.
func (s *Seq[T]) Pop(out *T) bool {
	if s.count == 0 {
		return false
	}
	s.count--
	if out != nil {
		*out = s.buf[s.count]
		var zero T
		s.buf[s.count] = zero
	} else {
		s.releaseAt(s.count)
	}
	return true
}

// Swap exchanges the element at idx with its predecessor and returns the
// slot at idx. It returns nil when idx is 0 or out of range.
func (s *Seq[T]) Swap(idx int) *T {
	if idx <= 0 || idx >= s.count {
		return nil
	}
	s.buf[idx-1], s.buf[idx] = s.buf[idx], s.buf[idx-1]
	return &s.buf[idx]
}
