// File: core/concurrency/mtpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool starts a bounded, fixed set of homogeneous worker threads that share a
// single Monitor. It is a static fan-out of worker mains, not a task
// scheduler: what a worker does between Park calls is up to its entry.
//
// Spawn failures are best effort: the failing slot stays empty, the remaining
// workers are still started and Start reports the failures to the caller.

package concurrency

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-rt/api"
)

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	spawner   api.Spawner
	stackSize int
	logger    *log.Entry
}

// WithSpawner replaces the default OS thread spawner.
func WithSpawner(s api.Spawner) PoolOption {
	return func(c *poolConfig) {
		if s != nil {
			c.spawner = s
		}
	}
}

// WithStackSize sets the stack size hint passed to the spawner.
func WithStackSize(n int) PoolOption {
	return func(c *poolConfig) { c.stackSize = n }
}

// WithLogger sets the pool logger.
func WithLogger(l *log.Entry) PoolOption {
	return func(c *poolConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Pool is a fixed-capacity worker pool over a shared Monitor.
type Pool[T any] struct {
	mu      sync.Mutex // serialises Start and Free
	max     int
	cfg     poolConfig
	mon     atomic.Pointer[Monitor[T]]
	threads []api.Handle

	state    atomic.Int32
	active   atomic.Int32
	running  atomic.Int32
	failures atomic.Int32
	wakeups  atomic.Uint64
}

// NewPool creates a pool that never runs more than maxWorkers workers.
// A non-positive maxWorkers defaults to runtime.NumCPU().
func NewPool[T any](maxWorkers int, opts ...PoolOption) *Pool[T] {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	p := &Pool[T]{
		max: maxWorkers,
		cfg: poolConfig{
			spawner: &OSThreadSpawner{},
			logger:  log.WithField("component", "mtpool"),
		},
	}
	for _, opt := range opts {
		opt(&p.cfg)
	}
	p.state.Store(int32(api.PoolIdle))
	return p
}

// Start copies user into a fresh Monitor and spawns count workers, each
// running entry with that same Monitor. count is clamped to [0, max].
// It returns the number of workers started; spawn failures are joined into
// an error wrapping api.ErrSpawnFailed.
func (p *Pool[T]) Start(entry func(*Monitor[T]), user T, count int) (int, error) {
	if entry == nil {
		return 0, fmt.Errorf("start: %w", ErrNilEntry)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if s := api.PoolState(p.state.Load()); s == api.PoolRunning || s == api.PoolStopping {
		return 0, api.ErrPoolRunning
	}
	if count > p.max {
		count = p.max
	}
	if count < 0 {
		count = 0
	}

	mon := newMonitor(user)
	p.mon.Store(mon)
	p.threads = make([]api.Handle, count)
	p.active.Store(int32(count))

	var errs []error
	for idx := 0; idx < count; idx++ {
		h, err := p.cfg.spawner.Spawn(func() { entry(mon) }, p.cfg.stackSize)
		if err != nil {
			p.cfg.logger.WithError(err).WithField("slot", idx).Warn("worker spawn failed")
			errs = append(errs, fmt.Errorf("slot %d: %w", idx, err))
			continue
		}
		p.threads[idx] = h
	}
	started := count - len(errs)
	p.running.Store(int32(started))
	p.failures.Store(int32(len(errs)))
	p.state.Store(int32(api.PoolRunning))

	p.cfg.logger.WithFields(log.Fields{
		"max":     p.max,
		"active":  count,
		"started": started,
	}).Debug("worker pool started")

	if len(errs) > 0 {
		return started, fmt.Errorf("%w: %d of %d workers: %w", api.ErrSpawnFailed, len(errs), count, errors.Join(errs...))
	}
	return started, nil
}

// Wakeup signals one parked worker that work is available. It does not
// request shutdown.
func (p *Pool[T]) Wakeup() {
	if mon := p.mon.Load(); mon != nil {
		mon.evts.NotifyOne()
		p.wakeups.Add(1)
	}
}

// Free requests shutdown, wakes every worker, joins them in slot order, then
// closes the event and releases the payload. It blocks until every started
// worker has returned. Calling Free on a pool that is not running returns
// api.ErrPoolClosed.
func (p *Pool[T]) Free() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if api.PoolState(p.state.Load()) != api.PoolRunning {
		return api.ErrPoolClosed
	}
	p.state.Store(int32(api.PoolStopping))

	mon := p.mon.Load()
	mon.requestQuit()
	mon.evts.NotifyAll()
	for idx, h := range p.threads {
		if h == nil {
			continue
		}
		h.Join()
		p.threads[idx] = nil
		p.running.Add(-1)
	}
	mon.evts.Close()
	if r, ok := any(&mon.user).(api.Releaser); ok {
		r.Release()
	}

	p.threads = nil
	p.state.Store(int32(api.PoolStopped))
	p.cfg.logger.WithField("active", p.active.Load()).Debug("worker pool stopped")
	return nil
}

// Shutdown implements api.GracefulShutdown.
func (p *Pool[T]) Shutdown() error {
	return p.Free()
}

// Active returns the number of worker slots fixed at Start.
func (p *Pool[T]) Active() int {
	return int(p.active.Load())
}

// Max returns the worker bound.
func (p *Pool[T]) Max() int {
	return p.max
}

// Stats returns a snapshot of the pool accounting.
func (p *Pool[T]) Stats() api.PoolStats {
	return api.PoolStats{
		State:         api.PoolState(p.state.Load()),
		Max:           p.max,
		Active:        int(p.active.Load()),
		Running:       int(p.running.Load()),
		SpawnFailures: int(p.failures.Load()),
		Wakeups:       p.wakeups.Load(),
	}
}

var _ api.GracefulShutdown = (*Pool[int])(nil)
