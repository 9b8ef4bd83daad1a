// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration: file format, defaults, and a thread-safe store with
// reload propagation.

package control

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-rt/api"
)

// Config holds the parameters of one runtime instance.
type Config struct {
	MaxWorkers   int    `yaml:"max-workers"`   // Hard bound on pool workers
	Workers      int    `yaml:"workers"`       // Workers started per batch
	StackSize    int    `yaml:"stack-size"`    // Stack size hint for worker threads
	ThreadLimit  int    `yaml:"thread-limit"`  // Live OS thread limit, 0 = unbounded
	PinCPUs      []int  `yaml:"pin-cpus"`      // CPUs workers are pinned to round-robin
	MemoryBudget int64  `yaml:"memory-budget"` // Byte budget for container storage, 0 = unbounded
	Items        int    `yaml:"items"`         // Items generated by the demo batch
	LogLevel     string `yaml:"log-level"`     // logrus level name
	LogFormat    string `yaml:"log-format"`    // "text" or "json"
	MetricsAddr  string `yaml:"metrics-addr"`  // Listen address for /metrics, empty disables
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers: 16,     // Sixteen worker slots
		Workers:    4,      // Four workers per batch
		Items:      1024,   // 1024 demo items
		LogLevel:   "info", // Info level logging
		LogFormat:  "text", // Human-readable logs
	}
}

// LoadConfig reads a YAML file on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch {
	case c.MaxWorkers <= 0:
		return api.NewError(api.ErrCodeInvalidArgument, "max-workers must be positive").
			WithContext("max-workers", c.MaxWorkers)
	case c.Workers < 0:
		return api.NewError(api.ErrCodeInvalidArgument, "workers must not be negative").
			WithContext("workers", c.Workers)
	case c.Items < 0:
		return api.NewError(api.ErrCodeInvalidArgument, "items must not be negative").
			WithContext("items", c.Items)
	case c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json":
		return api.NewError(api.ErrCodeInvalidArgument, "unknown log format").
			WithContext("log-format", c.LogFormat)
	}
	// An empty level means info.
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return api.Wrap(api.ErrCodeInvalidArgument, err).WithContext("log-level", c.LogLevel)
		}
	}
	return nil
}

// ToMap flattens the configuration for the ConfigStore.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"max-workers":   c.MaxWorkers,
		"workers":       c.Workers,
		"stack-size":    c.StackSize,
		"thread-limit":  c.ThreadLimit,
		"pin-cpus":      append([]int(nil), c.PinCPUs...),
		"memory-budget": c.MemoryBudget,
		"items":         c.Items,
		"log-level":     c.LogLevel,
		"log-format":    c.LogFormat,
		"metrics-addr":  c.MetricsAddr,
	}
}

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	copy := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		copy[k] = v
	}
	return copy
}

// Get returns a single value.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// SetConfig merges new values and notifies listeners synchronously, after
// the lock is released.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
