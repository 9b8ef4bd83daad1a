// File: core/concurrency/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread primitive. Each worker runs on a goroutine locked to its own OS
// thread and may be pinned to a CPU. A pinned thread stays locked until the
// goroutine exits, which makes the runtime discard the thread together with
// its modified affinity mask.

package concurrency

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-rt/adapters"
	"github.com/momentics/hioload-rt/api"
)

// Thread is a handle to a spawned worker thread.
type Thread struct {
	id        string
	cpu       int
	stackSize int
	done      chan struct{}
}

// ID returns the unique thread identifier.
func (t *Thread) ID() string { return t.id }

// CPU returns the CPU the thread is pinned to, or -1.
func (t *Thread) CPU() int { return t.cpu }

// StackSize returns the stack size hint the thread was spawned with.
// Goroutine stacks grow on demand; the hint is informational.
func (t *Thread) StackSize() int { return t.stackSize }

// Done is closed when the thread exits.
func (t *Thread) Done() <-chan struct{} { return t.done }

// Join blocks until the thread exits.
func (t *Thread) Join() { <-t.done }

// OSThreadSpawner starts threads locked to OS threads.
// The zero value is ready to use.
type OSThreadSpawner struct {
	// MaxThreads bounds the number of live threads; 0 means unbounded.
	MaxThreads int
	// CPUs, when set, pins successive threads round-robin to these CPUs.
	CPUs []int
	// Logger receives worker panics and pinning failures.
	Logger *log.Entry

	live atomic.Int32
	next atomic.Uint64
}

// Spawn runs entry on a new OS-locked thread. It fails when the live thread
// limit is reached or the thread cannot be pinned to its CPU.
func (s *OSThreadSpawner) Spawn(entry func(), stackSize int) (api.Handle, error) {
	if entry == nil {
		return nil, fmt.Errorf("spawn: %w", ErrNilEntry)
	}
	if n := s.live.Add(1); s.MaxThreads > 0 && int(n) > s.MaxThreads {
		s.live.Add(-1)
		return nil, fmt.Errorf("%w: %w (max %d)", api.ErrSpawnFailed, ErrThreadLimit, s.MaxThreads)
	}

	t := &Thread{
		id:        uuid.NewString(),
		cpu:       -1,
		stackSize: stackSize,
		done:      make(chan struct{}),
	}
	if len(s.CPUs) > 0 {
		t.cpu = s.CPUs[int((s.next.Add(1)-1)%uint64(len(s.CPUs)))]
	}
	logger := s.logger().WithField("thread", t.id)

	ready := make(chan error, 1)
	go func() {
		defer close(t.done)
		defer s.live.Add(-1)

		if t.cpu >= 0 {
			// Pin locks the OS thread and is never undone.
			if err := adapters.NewAffinityAdapter().Pin(t.cpu); err != nil {
				ready <- err
				return
			}
		} else {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}
		ready <- nil

		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("worker panic: %v", r)
			}
		}()
		entry()
	}()

	if err := <-ready; err != nil {
		<-t.done
		logger.WithError(err).WithField("cpu", t.cpu).Warn("thread pinning failed")
		return nil, fmt.Errorf("%w: %w: %w", api.ErrSpawnFailed, ErrPinFailed, err)
	}
	return t, nil
}

// Live returns the number of running threads.
func (s *OSThreadSpawner) Live() int {
	return int(s.live.Load())
}

func (s *OSThreadSpawner) logger() *log.Entry {
	if s.Logger != nil {
		return s.Logger
	}
	return log.WithField("component", "thread")
}

var _ api.Spawner = (*OSThreadSpawner)(nil)
var _ api.Handle = (*Thread)(nil)
