// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector backed by a private Prometheus registry.
// Pool and container statistics are pushed by their owners; the latest
// snapshot of every observed component is also kept for debug dumps.

package control

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentics/hioload-rt/api"
)

const namespace = "hioload_rt"

// Metrics holds the Prometheus collectors of one runtime.
type Metrics struct {
	reg *prometheus.Registry

	poolWorkers   *prometheus.GaugeVec
	poolFailures  *prometheus.GaugeVec
	poolWakeups   *prometheus.GaugeVec
	seqLen        *prometheus.GaugeVec
	seqCap        *prometheus.GaugeVec
	seqAllocFails *prometheus.GaugeVec
	items         *prometheus.CounterVec
	batchDuration prometheus.Histogram

	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetrics creates a registry with Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg:     prometheus.NewRegistry(),
		metrics: make(map[string]any),
		poolWorkers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "workers",
			Help: "Worker slots by state (active, running).",
		}, []string{"pool", "state"}),
		poolFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "spawn_failures",
			Help: "Worker slots left empty at the last start.",
		}, []string{"pool"}),
		poolWakeups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "wakeups",
			Help: "Wake-ups issued to the pool.",
		}, []string{"pool"}),
		seqLen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "seq", Name: "length",
			Help: "Live elements in the container.",
		}, []string{"seq"}),
		seqCap: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "seq", Name: "capacity",
			Help: "Allocated slots in the container.",
		}, []string{"seq"}),
		seqAllocFails: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "seq", Name: "alloc_failures",
			Help: "Allocations refused to the container.",
		}, []string{"seq"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "batch", Name: "items_total",
			Help: "Batch items processed by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "batch", Name: "duration_seconds",
			Help:    "Wall time of a batch run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.poolWorkers, m.poolFailures, m.poolWakeups,
		m.seqLen, m.seqCap, m.seqAllocFails,
		m.items, m.batchDuration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObservePool publishes pool statistics under name.
func (m *Metrics) ObservePool(name string, st api.PoolStats) {
	m.poolWorkers.WithLabelValues(name, "active").Set(float64(st.Active))
	m.poolWorkers.WithLabelValues(name, "running").Set(float64(st.Running))
	m.poolFailures.WithLabelValues(name).Set(float64(st.SpawnFailures))
	m.poolWakeups.WithLabelValues(name).Set(float64(st.Wakeups))
	m.Set("pool."+name, st)
}

// ObserveSeq publishes container statistics under name.
func (m *Metrics) ObserveSeq(name string, st api.SeqStats) {
	m.seqLen.WithLabelValues(name).Set(float64(st.Len))
	m.seqCap.WithLabelValues(name).Set(float64(st.Cap))
	m.seqAllocFails.WithLabelValues(name).Set(float64(st.AllocFailure))
	m.Set("seq."+name, st)
}

// ItemDone counts one processed batch item.
func (m *Metrics) ItemDone(err error) {
	if err != nil {
		m.items.WithLabelValues("error").Inc()
		return
	}
	m.items.WithLabelValues("ok").Inc()
}

// BatchDone records the duration of a batch run.
func (m *Metrics) BatchDone(d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
}

// Set sets or updates a snapshot key.
func (m *Metrics) Set(key string, value any) {
	m.mu.Lock()
	m.metrics[key] = value
	m.updated = time.Now()
	m.mu.Unlock()
}

// GetSnapshot returns the latest observed statistics.
func (m *Metrics) GetSnapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.metrics))
	for k, v := range m.metrics {
		out[k] = v
	}
	return out
}
