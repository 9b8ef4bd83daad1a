// control/control_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/momentics/hioload-rt/api"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if d := cmp.Diff(DefaultConfig(), cfg); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
}

func TestLoadConfig_HomeRelative(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	if err := os.WriteFile(filepath.Join(home, "rt.yaml"), []byte("workers: 2\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig("~/rt.yaml")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Workers != 2 {
		t.Fatalf("Expected 2 workers, got %d", cfg.Workers)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, `
max-workers: 8
workers: 3
pin-cpus: [0, 1]
memory-budget: 65536
log-format: json
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	want := DefaultConfig()
	want.MaxWorkers = 8
	want.Workers = 3
	want.PinCPUs = []int{0, 1}
	want.MemoryBudget = 65536
	want.LogFormat = "json"
	if d := cmp.Diff(want, cfg); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "unknown-key: 1\n")); err == nil {
		t.Fatal("Expected unknown field to be rejected")
	}
	_, err := LoadConfig(writeFile(t, "max-workers: 0\n"))
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Code != api.ErrCodeInvalidArgument {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected missing file error")
	}
}

func TestValidate_LogSettings(t *testing.T) {
	cases := []struct {
		name   string
		level  string
		format string
		ok     bool
	}{
		{"defaults", "info", "text", true},
		{"empty values", "", "", true},
		{"json debug", "debug", "json", true},
		{"bad level", "loud", "text", false},
		{"bad format", "info", "xml", false},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.LogLevel = tc.level
		cfg.LogFormat = tc.format
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, api.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
	if _, err := LoadConfig(writeFile(t, "log-level: loud\n")); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("Expected bad level rejected at load, got %v", err)
	}
}

func TestConfigStore_Reload(t *testing.T) {
	cs := NewConfigStore()
	calls := 0
	cs.OnReload(func() { calls++ })
	cs.SetConfig(DefaultConfig().ToMap())
	cs.SetConfig(map[string]any{"log-level": "debug"})
	if calls != 2 {
		t.Fatalf("Expected 2 reload notifications, got %d", calls)
	}
	if v, ok := cs.Get("log-level"); !ok || v != "debug" {
		t.Fatalf("Expected log-level debug, got %v", v)
	}
	snap := cs.GetSnapshot()
	snap["log-level"] = "mutated"
	if v, _ := cs.Get("log-level"); v != "debug" {
		t.Fatal("snapshot must be a copy")
	}
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.ObservePool("batch", api.PoolStats{Active: 4, Running: 3, SpawnFailures: 1, Wakeups: 9})
	m.ObserveSeq("backlog", api.SeqStats{Len: 5, Cap: 7, AllocFailure: 2})
	m.ItemDone(nil)
	m.ItemDone(nil)
	m.ItemDone(errors.New("bad"))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"active", testutil.ToFloat64(m.poolWorkers.WithLabelValues("batch", "active")), 4},
		{"running", testutil.ToFloat64(m.poolWorkers.WithLabelValues("batch", "running")), 3},
		{"failures", testutil.ToFloat64(m.poolFailures.WithLabelValues("batch")), 1},
		{"wakeups", testutil.ToFloat64(m.poolWakeups.WithLabelValues("batch")), 9},
		{"seq len", testutil.ToFloat64(m.seqLen.WithLabelValues("backlog")), 5},
		{"seq cap", testutil.ToFloat64(m.seqCap.WithLabelValues("backlog")), 7},
		{"seq fails", testutil.ToFloat64(m.seqAllocFails.WithLabelValues("backlog")), 2},
		{"ok items", testutil.ToFloat64(m.items.WithLabelValues("ok")), 2},
		{"error items", testutil.ToFloat64(m.items.WithLabelValues("error")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	snap := m.GetSnapshot()
	if _, ok := snap["pool.batch"]; !ok {
		t.Fatal("Expected pool snapshot entry")
	}
	if _, ok := snap["seq.backlog"]; !ok {
		t.Fatal("Expected seq snapshot entry")
	}
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("answer", func() any { return 42 })
	state := dp.DumpState()
	if state["answer"] != 42 {
		t.Fatalf("Expected probe value 42, got %v", state["answer"])
	}
	if n, ok := state["platform.cpus"].(int); !ok || n < 1 {
		t.Fatalf("Expected platform.cpus >= 1, got %v", state["platform.cpus"])
	}
}

func TestDebugProbePanicIsReported(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("bad", func() any { panic("boom") })
	dp.RegisterProbe("nested", func() any {
		dp.RegisterProbe("late", func() any { return true })
		return "ok"
	})
	state := dp.DumpState()
	if s, _ := state["bad"].(string); !strings.Contains(s, "boom") {
		t.Fatalf("Expected panic report, got %v", state["bad"])
	}
	if state["nested"] != "ok" {
		t.Fatalf("Expected nested probe value, got %v", state["nested"])
	}
	if dp.DumpState()["late"] != true {
		t.Fatal("Expected probe registered from a probe")
	}
}
