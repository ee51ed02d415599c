package cache

import (
	"github.com/sirupsen/logrus"
)

// Type tags the category of page file a cache serves.
type Type int

const (
	// TypeData marks caches of data pages.
	TypeData Type = iota
	// TypeBTree marks caches of B-tree nodes.
	TypeBTree
)

func (t Type) String() string {
	switch t {
	case TypeBTree:
		return "btree"
	default:
		return "data"
	}
}

// EvictReason explains why a page left the cache.
type EvictReason int

const (
	// EvictPolicy: chosen as a victim by the active policy.
	EvictPolicy EvictReason = iota
	// EvictShrink: dropped because Resize lowered the capacity.
	EvictShrink
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(used, capacity int)
	Resize(from, to int)
	Thrashing(n int)
}

// DefaultMaxRetries is the number of sweeps without any unloadable resident
// page tolerated before an admission fails with ErrCacheSaturated.
const DefaultMaxRetries = 3

// Options configures a page cache. Zero values are safe; defaults are
// applied by the policy constructors:
//   - empty Name     => "cache"
//   - GrowthFactor 0 => 1.0 (fixed size)
//   - MaxRetries 0   => DefaultMaxRetries
//   - nil Metrics    => NoopMetrics
//   - nil Logger     => logrus.StandardLogger()
type Options struct {
	// Name identifies the cache (usually the page file name).
	Name string
	// Type tags the page category served.
	Type Type

	// Capacity is the number of resident pages. Must be > 0.
	Capacity int

	// GrowthFactor > 1.0 lets the manager grow the cache by that ratio.
	GrowthFactor float64
	// GrowthThreshold is the fraction of Capacity that thrashing must exceed
	// before the cache asks its manager for memory (0 = never ask).
	GrowthThreshold float64

	// MaxRetries bounds the sweeps that find no unloadable page at all.
	// A negative value retries forever, which blocks the admitting
	// goroutine until some page gets unpinned.
	MaxRetries int

	// Manager is asked for memory when the cache thrashes. May be set later
	// with SetManager.
	Manager Manager

	// Observability
	Metrics Metrics
	Logger  logrus.FieldLogger
}

// withDefaults returns a copy of o with defaults applied.
func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "cache"
	}
	if o.GrowthFactor <= 0 {
		o.GrowthFactor = 1.0
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
