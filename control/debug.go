// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes evaluated on demand, e.g. by the /debug/state endpoint.

package control

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/momentics/hioload-rt/affinity"
	"github.com/momentics/hioload-rt/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState evaluates every probe outside the registry lock, so a probe may
// itself register probes. A panicking probe reports its panic value.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	probes := make(map[string]func() any, len(dp.probes))
	for k, fn := range dp.probes {
		probes[k] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(probes))
	for k, fn := range probes {
		out[k] = evalProbe(fn)
	}
	return out
}

func evalProbe(fn func() any) (v any) {
	defer func() {
		if r := recover(); r != nil {
			v = fmt.Sprintf("probe panic: %v", r)
		}
	}()
	return fn()
}

// RegisterPlatformProbes adds CPU topology probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.affinity", func() any {
		cpus, err := affinity.AllowedCPUs()
		if err != nil {
			return err.Error()
		}
		return cpus
	})
	dp.RegisterProbe("runtime.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}

var _ api.Debug = (*DebugProbes)(nil)
