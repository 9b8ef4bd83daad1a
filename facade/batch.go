// File: facade/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Batch fan-out: items are loaded into a fixed-capacity Seq backlog, a worker
// pool is started over a shared payload, and results are gathered through a
// FIFO then ordered by item index.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-rt/api"
	"github.com/momentics/hioload-rt/core/concurrency"
	"github.com/momentics/hioload-rt/core/memory"
	"github.com/momentics/hioload-rt/core/seq"
)

// Result is the outcome of one batch item.
type Result[O any] struct {
	Index int
	Value O
	Err   error
}

// batch is the pool payload. It is copied into the Monitor, so every shared
// field is a pointer.
type batch[I, O any] struct {
	ctx     context.Context
	fn      func(I) (O, error)
	mu      *sync.Mutex
	next    *int
	backlog *seq.Seq[I]
	results *queue.Queue
	pending *sync.WaitGroup
	metrics itemObserver
}

type itemObserver interface {
	ItemDone(err error)
}

// claim hands out the next unprocessed item and reports whether more remain.
func (b *batch[I, O]) claim() (idx int, item I, more, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if *b.next >= b.backlog.Len() {
		return 0, item, false, false
	}
	idx = *b.next
	*b.next++
	b.backlog.GetInto(idx, &item)
	return idx, item, *b.next < b.backlog.Len(), true
}

func (b *batch[I, O]) push(r Result[O]) {
	b.mu.Lock()
	b.results.Add(r)
	b.mu.Unlock()
	b.metrics.ItemDone(r.Err)
	b.pending.Done()
}

// call runs fn on one item. A panic becomes the item's error so every claimed
// item still produces a result.
func (b *batch[I, O]) call(idx int, item I) (v O, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero O
			v = zero
			err = api.NewError(api.ErrCodeInternal, fmt.Sprintf("batch item panicked: %v", r)).
				WithContext("index", idx)
		}
	}()
	return b.fn(item)
}

// Release frees the backlog once every worker has exited.
func (b *batch[I, O]) Release() {
	b.backlog.Free()
}

func batchWorker[I, O any](m *concurrency.Monitor[batch[I, O]]) {
	b := m.User()
	for {
		m.Park()
		if m.Quitting() {
			return
		}
		for {
			idx, item, more, ok := b.claim()
			if !ok {
				break
			}
			if more {
				// Hand the rest of the backlog to a peer.
				m.Event().NotifyOne()
			}
			r := Result[O]{Index: idx}
			if err := b.ctx.Err(); err != nil {
				r.Err = err
			} else {
				r.Value, r.Err = b.call(idx, item)
			}
			b.push(r)
		}
	}
}

// RunBatch applies fn to every item on the runtime's worker threads and
// returns one Result per item, ordered by index. Item failures are reported in
// the results; the returned error covers setup failures only. Once ctx is
// done the remaining items are not passed to fn and carry ctx.Err().
func RunBatch[I, O any](ctx context.Context, rt *Runtime, items []I, fn func(I) (O, error)) ([]Result[O], error) {
	if fn == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil batch function")
	}
	if err := rt.acquire(); err != nil {
		return nil, err
	}
	defer rt.release()

	cfg := rt.Config()
	logger := rt.Logger().WithFields(log.Fields{
		"batch": uuid.NewString(),
		"items": len(items),
	})
	started := time.Now()

	backlog, err := loadBacklog(items, cfg.MemoryBudget)
	if err != nil {
		return nil, fmt.Errorf("load backlog: %w", err)
	}
	rt.Metrics().ObserveSeq("backlog", backlog.Stats())

	var (
		mu      sync.Mutex
		next    int
		pending sync.WaitGroup
	)
	payload := batch[I, O]{
		ctx:     ctx,
		fn:      fn,
		mu:      &mu,
		next:    &next,
		backlog: backlog,
		results: queue.New(),
		pending: &pending,
		metrics: rt.Metrics(),
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := concurrency.NewPool[batch[I, O]](cfg.MaxWorkers,
		concurrency.WithSpawner(rt.Spawner()),
		concurrency.WithStackSize(cfg.StackSize),
		concurrency.WithLogger(logger.WithField("component", "mtpool")),
	)

	pending.Add(backlog.Len())
	n, err := pool.Start(batchWorker[I, O], payload, workers)
	if n == 0 && backlog.Len() > 0 {
		pool.Free()
		if err == nil {
			err = api.ErrSpawnFailed
		}
		return nil, fmt.Errorf("start workers: %w", err)
	}
	if err != nil {
		logger.WithError(err).WithField("started", n).Warn("running batch with fewer workers")
	}

	if backlog.Len() > 0 {
		for i := 0; i < n; i++ {
			pool.Wakeup()
		}
	}
	pending.Wait()

	rt.Metrics().ObservePool("batch", pool.Stats())
	if err := pool.Free(); err != nil && !errors.Is(err, api.ErrPoolClosed) {
		return nil, err
	}

	out, err := collect[O](payload.results, len(items))
	if err != nil {
		return nil, fmt.Errorf("collect results: %w", err)
	}
	defer out.Free()
	rt.Metrics().ObserveSeq("results", out.Stats())

	var failed int
	out.TraverseHeadToTail(&failed, api.VisitorFunc[Result[O]](func(ctx any, r *Result[O]) bool {
		if r.Err != nil {
			*ctx.(*int)++
		}
		return true
	}))

	elapsed := time.Since(started)
	rt.Metrics().BatchDone(elapsed)
	logger.WithFields(log.Fields{
		"workers":  n,
		"failed":   failed,
		"duration": elapsed,
	}).Debug("batch done")

	return append([]Result[O](nil), out.Data()...), nil
}

// loadBacklog copies items into a container sized exactly to them. A positive
// budget bounds the bytes the container may allocate.
func loadBacklog[I any](items []I, budget int64) (*seq.Seq[I], error) {
	var alloc api.Allocator[I] = memory.Heap[I]{}
	if budget > 0 {
		alloc = memory.NewBudget[I](alloc, budget)
	}
	// The backlog holds copies; the caller keeps ownership of the items.
	backlog := seq.New[I](seq.WithAllocator[I](alloc), seq.WithRelease[I](nil))
	if err := backlog.Reserve(len(items)); err != nil {
		return nil, err
	}
	for idx := range items {
		if backlog.AppendNoGrow(items[idx]) == nil {
			backlog.Free()
			return nil, api.ErrCapacityExhausted
		}
	}
	if err := backlog.NoGrow(); err != nil {
		backlog.Free()
		return nil, err
	}
	return backlog, nil
}

// collect drains the FIFO into a container indexed by item position.
func collect[O any](fifo *queue.Queue, n int) (*seq.Seq[Result[O]], error) {
	out, err := seq.NewCounted[Result[O]](n)
	if err != nil {
		out.Free()
		return nil, err
	}
	for fifo.Length() > 0 {
		r := fifo.Remove().(Result[O])
		if out.GetSafe(r.Index) == nil {
			out.Free()
			return nil, api.NewError(api.ErrCodeOutOfRange, "result index out of range").
				WithContext("index", r.Index)
		}
		*out.Get(r.Index) = r
	}
	return out, nil
}
