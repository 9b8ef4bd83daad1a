// File: core/concurrency/thread_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-rt/affinity"
	"github.com/momentics/hioload-rt/api"
)

func TestThread_SpawnJoin(t *testing.T) {
	s := &OSThreadSpawner{}
	ran := make(chan struct{})
	release := make(chan struct{})
	h, err := s.Spawn(func() {
		close(ran)
		<-release
	}, 64*1024)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	<-ran
	if s.Live() != 1 {
		t.Fatalf("Expected 1 live thread, got %d", s.Live())
	}
	th := h.(*Thread)
	if th.ID() == "" || th.StackSize() != 64*1024 || th.CPU() != -1 {
		t.Fatalf("unexpected thread handle %+v", th)
	}
	close(release)
	h.Join()
	if s.Live() != 0 {
		t.Fatalf("Expected 0 live threads after Join, got %d", s.Live())
	}
}

func TestThread_Limit(t *testing.T) {
	s := &OSThreadSpawner{MaxThreads: 1}
	release := make(chan struct{})
	h, err := s.Spawn(func() { <-release }, 0)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if _, err := s.Spawn(func() {}, 0); !errors.Is(err, api.ErrSpawnFailed) || !errors.Is(err, ErrThreadLimit) {
		t.Fatalf("Expected thread limit failure, got %v", err)
	}
	close(release)
	h.Join()
}

func TestThread_PanicIsContained(t *testing.T) {
	s := &OSThreadSpawner{}
	h, err := s.Spawn(func() { panic("boom") }, 0)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	h.Join()
}

func TestThread_Pinned(t *testing.T) {
	cpus, err := affinity.AllowedCPUs()
	if err != nil {
		t.Skip("affinity not supported on this platform")
	}
	s := &OSThreadSpawner{CPUs: cpus[:1]}
	h, err := s.Spawn(func() {}, 0)
	if err != nil {
		t.Fatalf("Spawn pinned failed: %v", err)
	}
	h.Join()
	if h.(*Thread).CPU() != cpus[0] {
		t.Fatalf("Expected thread on cpu %d, got %d", cpus[0], h.(*Thread).CPU())
	}
}

func TestThread_PinFailure(t *testing.T) {
	s := &OSThreadSpawner{CPUs: []int{1 << 20}}
	if _, err := s.Spawn(func() {}, 0); !errors.Is(err, api.ErrSpawnFailed) || !errors.Is(err, ErrPinFailed) {
		t.Fatalf("Expected pin failure, got %v", err)
	}
	if s.Live() != 0 {
		t.Fatalf("Expected failed thread to be gone, got %d live", s.Live())
	}
}

func TestThread_NilEntry(t *testing.T) {
	s := &OSThreadSpawner{}
	if _, err := s.Spawn(nil, 0); !errors.Is(err, ErrNilEntry) {
		t.Fatalf("Expected ErrNilEntry, got %v", err)
	}
}
