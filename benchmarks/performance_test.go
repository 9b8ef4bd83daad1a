// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-rt components.

package benchmarks

import (
	"context"
	"testing"

	"github.com/momentics/hioload-rt/control"
	"github.com/momentics/hioload-rt/core/concurrency"
	"github.com/momentics/hioload-rt/core/memory"
	"github.com/momentics/hioload-rt/core/seq"
	"github.com/momentics/hioload-rt/facade"
)

// BenchmarkSeqAppend measures tail insertion with geometric growth.
func BenchmarkSeqAppend(b *testing.B) {
	s := seq.New[int64]()
	defer s.Free()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if s.Append(int64(i)) == nil {
			b.Fatal("append failed")
		}
	}
}

// BenchmarkSeqAppendMmap measures tail insertion on mmap-backed storage.
func BenchmarkSeqAppendMmap(b *testing.B) {
	alloc, err := memory.NewMmap[int64]()
	if err != nil {
		b.Fatal(err)
	}
	s := seq.New[int64](seq.WithAllocator[int64](alloc))
	defer s.Free()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if s.Append(int64(i)) == nil {
			b.Fatal("append failed")
		}
	}
}

// BenchmarkSeqPushHeadPop measures head insertion on a short container,
// where every insert shifts the live elements.
func BenchmarkSeqPushHeadPop(b *testing.B) {
	s := seq.New[int64]()
	defer s.Free()
	if err := s.Reserve(64); err != nil {
		b.Fatal(err)
	}
	var out int64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.PushHeadNoGrow(int64(i))
		if s.Len() == 64 {
			for s.Pop(&out) {
			}
		}
	}
}

// BenchmarkEventPingPong measures a NotifyOne hand-off between two threads.
func BenchmarkEventPingPong(b *testing.B) {
	ping, pong := concurrency.NewEvent(), concurrency.NewEvent()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; i++ {
			ping.Wait()
			pong.NotifyOne()
		}
	}()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ping.NotifyOne()
		pong.Wait()
	}
	<-done
}

// BenchmarkRunBatch measures end-to-end fan-out over the worker pool.
func BenchmarkRunBatch(b *testing.B) {
	cfg := control.DefaultConfig()
	cfg.Workers = 4
	cfg.LogLevel = "error"
	rt, err := facade.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Shutdown()

	items := make([]int, 256)
	for i := range items {
		items[i] = i
	}
	square := func(v int) (int, error) { return v * v, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := facade.RunBatch(context.Background(), rt, items, square); err != nil {
			b.Fatal(err)
		}
	}
}
