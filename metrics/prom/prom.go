// Package prom exports page cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/pagecache/cache"
)

// Adapter implements cache.Metrics with Prometheus counters and gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
//
// One Adapter serves one cache: give each cache its own constLabels (for
// example {"cache": "dom.dbx"}) when several share a registry.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    *prometheus.CounterVec
	used      prometheus.Gauge
	buffers   prometheus.Gauge
	resizes   *prometheus.CounterVec
	thrashing prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Page cache hits"),
		misses: counter("misses_total", "Page cache misses"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Pages evicted, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		used:    gauge("used_buffers", "Resident pages"),
		buffers: gauge("buffers", "Capacity in pages"),
		resizes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "resizes_total",
				Help:        "Capacity changes, by direction",
				ConstLabels: constLabels,
			},
			[]string{"direction"},
		),
		thrashing: gauge("thrashing", "Reloads of recently replaced pages since the last resize"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.used, a.buffers, a.resizes, a.thrashing)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

// Size updates the occupancy gauges.
func (a *Adapter) Size(used, capacity int) {
	a.used.Set(float64(used))
	a.buffers.Set(float64(capacity))
}

// Resize counts a capacity change and updates the capacity gauge.
func (a *Adapter) Resize(from, to int) {
	dir := "grow"
	if to < from {
		dir = "shrink"
	}
	a.resizes.WithLabelValues(dir).Inc()
	a.buffers.Set(float64(to))
}

// Thrashing publishes the current thrashing estimate.
func (a *Adapter) Thrashing(n int) { a.thrashing.Set(float64(n)) }

// reason maps EvictReason to a stable label value.
func reason(r cache.EvictReason) string {
	switch r {
	case cache.EvictShrink:
		return "shrink"
	default:
		return "policy"
	}
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
