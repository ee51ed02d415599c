// Package gclock implements the generalized Clock page cache. Reference
// counts are frequency counters bumped on every re-add; the eviction sweep
// decrements them until one drains to zero.
//
// The ageing constants used by the LRD cache also live here.
package gclock

import (
	"slices"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/slots"
)

const (
	// AgeingPeriod is the number of references per slot between two ageing
	// passes of a reference-density cache.
	AgeingPeriod = 10
	// AgeingDivisor divides every reference count during an ageing pass.
	AgeingDivisor = 2
	// CleanupFactor times the capacity bounds the reference clock before it is
	// restarted.
	CleanupFactor = cache.MaxRef
)

// Age divides the reference count of every page by AgeingDivisor, keeping
// at least 1.
func Age[T cache.Page](pages []T) {
	for _, p := range pages {
		p.SetReferenceCount(max(p.ReferenceCount()/AgeingDivisor, 1))
	}
}

type gclockCache[T cache.Page] struct {
	*cache.Core
	slots *slots.Array[T]
}

// New returns a GClock cache with opt.Capacity slots.
func New[T cache.Page](opt cache.Options) (cache.Cache[T], error) {
	core, err := cache.NewCore(opt)
	if err != nil {
		return nil, err
	}
	return &gclockCache[T]{Core: core, slots: slots.New[T](opt.Capacity)}, nil
}

func (c *gclockCache[T]) Add(p T) error { return c.AddRef(p, 1) }

// AddRef admits p with initialRefCount, or increments the count of the
// resident page with the same key.
func (c *gclockCache[T]) AddRef(p T, initialRefCount int) error {
	if old, _, ok := c.slots.Lookup(p.Key()); ok {
		old.IncReferenceCount()
		return nil
	}
	p.SetReferenceCount(min(max(initialRefCount, 0), cache.MaxRef))
	if !c.slots.Full() {
		c.slots.Append(p)
		c.ReportSize(c.slots.Len())
		return nil
	}

	i, err := c.victim()
	if err != nil {
		return err
	}
	c.slots.Replace(i, p)
	c.Evicted(cache.EvictPolicy)
	c.ReportSize(c.slots.Len())
	c.Replaced(c, p)
	return nil
}

// victim decrements the count of every unloadable page, sweep after sweep,
// and returns the first slot whose count drops to zero.
func (c *gclockCache[T]) victim() (int, error) {
	for dry := 0; ; {
		unloadable := false
		for i, p := range c.slots.Items() {
			if !p.AllowUnload() {
				continue
			}
			unloadable = true
			if p.DecReferenceCount() > 0 {
				continue
			}
			if err := c.Persist(p); err != nil {
				return -1, err
			}
			return i, nil
		}
		if unloadable {
			continue
		}
		dry++
		if err := c.DrySweep(dry, c.slots.Len()); err != nil {
			return -1, err
		}
	}
}

func (c *gclockCache[T]) Get(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	c.Lookup(ok)
	return p, ok
}

func (c *gclockCache[T]) GetPage(p T) (T, bool) { return c.Get(p.Key()) }

func (c *gclockCache[T]) Peek(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	return p, ok
}

func (c *gclockCache[T]) Remove(p T) {
	if c.slots.Remove(p.Key()) {
		c.ReportSize(c.slots.Len())
	}
}

func (c *gclockCache[T]) Flush() (bool, error) { return cache.FlushPages(c.slots.Items(), false) }

func (c *gclockCache[T]) HasDirtyItems() bool { return cache.HasDirty(c.slots.Items()) }

func (c *gclockCache[T]) Len() int { return c.slots.Len() }

func (c *gclockCache[T]) UsedBuffers() int { return c.slots.Len() }

// Resize rebuilds the slot array, keeping the most referenced pages on
// shrink.
func (c *gclockCache[T]) Resize(newSize int) error {
	keep, err := cache.Rebuild(c.Core, ByReferenceCount(c.slots.Items()), newSize)
	if err != nil {
		return err
	}
	c.slots.Reset(newSize, keep)
	c.ReportSize(c.slots.Len())
	return nil
}

// ByReferenceCount returns a copy of pages ordered by descending reference
// count; equal counts keep their order.
func ByReferenceCount[T cache.Page](pages []T) []T {
	out := slices.Clone(pages)
	slices.SortStableFunc(out, func(a, b T) int { return b.ReferenceCount() - a.ReferenceCount() })
	return out
}
