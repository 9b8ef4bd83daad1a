// File: facade/hioload.go
// Unified facade layer for hioload-rt.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the Runtime struct, which aggregates the configuration,
// logger, metrics, debug probes and the shared thread spawner behind a single
// facade. Batches are fanned out over worker pools created per run (see
// batch.go).

package facade

import (
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/momentics/hioload-rt/api"
	"github.com/momentics/hioload-rt/control"
	"github.com/momentics/hioload-rt/core/concurrency"
)

// Runtime is the entry point of the library. It is safe for concurrent use;
// several batches may run at once and share the thread spawner.
type Runtime struct {
	config  *control.Config
	logger  *log.Logger
	log     *log.Entry
	metrics *control.Metrics
	store   *control.ConfigStore
	debug   *control.DebugProbes
	spawner *concurrency.OSThreadSpawner

	// Batches hold gate for reading while they run; Shutdown takes it for
	// writing.
	gate   sync.RWMutex
	closed bool
}

// New validates cfg and builds a Runtime. A nil cfg selects the defaults.
func New(cfg *control.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		config:  cfg,
		logger:  logger,
		log:     logger.WithField("component", "runtime"),
		metrics: control.NewMetrics(),
		store:   control.NewConfigStore(),
		debug:   control.NewDebugProbes(),
	}
	r.spawner = &concurrency.OSThreadSpawner{
		MaxThreads: cfg.ThreadLimit,
		CPUs:       append([]int(nil), cfg.PinCPUs...),
		Logger:     logger.WithField("component", "thread"),
	}

	// Log level follows the store so it can be changed while running.
	r.store.OnReload(r.applyLogLevel)
	r.store.SetConfig(cfg.ToMap())

	control.RegisterPlatformProbes(r.debug)
	r.debug.RegisterProbe("runtime.config", func() any { return r.store.GetSnapshot() })
	r.debug.RegisterProbe("runtime.threads", func() any { return r.spawner.Live() })
	r.debug.RegisterProbe("runtime.metrics", func() any { return r.metrics.GetSnapshot() })

	r.log.WithFields(log.Fields{
		"max-workers": cfg.MaxWorkers,
		"workers":     cfg.Workers,
		"pin-cpus":    cfg.PinCPUs,
	}).Debug("runtime initialized")
	return r, nil
}

// NewLogger builds a logrus logger with the given level name and format
// ("text" or "json").
func NewLogger(level, format string) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, err).WithContext("log-level", level)
	}
	logger.SetLevel(lvl)
	switch format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown log format").
			WithContext("log-format", format)
	}
	return logger, nil
}

func (r *Runtime) applyLogLevel() {
	v, ok := r.store.Get("log-level")
	if !ok {
		return
	}
	name, _ := v.(string)
	lvl, err := log.ParseLevel(name)
	if err != nil {
		r.log.WithError(err).Warn("ignoring log level update")
		return
	}
	if lvl != r.logger.GetLevel() {
		r.logger.SetLevel(lvl)
		r.log.WithField("level", lvl.String()).Info("log level changed")
	}
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() *control.Config {
	return r.config
}

// Logger returns the runtime's log entry.
func (r *Runtime) Logger() *log.Entry {
	return r.log
}

// Metrics returns the metrics registry wrapper.
func (r *Runtime) Metrics() *control.Metrics {
	return r.metrics
}

// Store returns the dynamic configuration store. Setting "log-level"
// changes the log level of the running instance.
func (r *Runtime) Store() *control.ConfigStore {
	return r.store
}

// Debug returns the debug probe registry.
func (r *Runtime) Debug() api.Debug {
	return r.debug
}

// Spawner returns the thread spawner shared by all batches.
func (r *Runtime) Spawner() *concurrency.OSThreadSpawner {
	return r.spawner
}

// Shutdown implements api.GracefulShutdown. It rejects new batches and waits
// for running ones to finish. Calling it again is a no-op.
func (r *Runtime) Shutdown() error {
	r.gate.Lock()
	defer r.gate.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.log.Debug("runtime stopped")
	return nil
}

// acquire admits one batch; the caller must call release when done.
func (r *Runtime) acquire() error {
	r.gate.RLock()
	if r.closed {
		r.gate.RUnlock()
		return api.ErrPoolClosed
	}
	return nil
}

func (r *Runtime) release() {
	r.gate.RUnlock()
}

var _ api.GracefulShutdown = (*Runtime)(nil)
