// Package lrd implements the least-reference-density page cache.
//
// The cache keeps a reference clock (total) that advances on every add. A
// page is stamped with the clock when admitted; its density is
// references / (total - stamp). The victim is the unloadable page with the
// lowest density. Counts are halved every AgeingPeriod*capacity references,
// and the whole clock restarts once it passes CleanupFactor*capacity.
package lrd

import (
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/slots"
	"github.com/IvanBrykalov/pagecache/policy/gclock"
)

type lrdCache[T cache.Page] struct {
	*cache.Core
	slots *slots.Array[T]

	total      int // reference clock
	nextAgeing int
}

// New returns an LRD cache with opt.Capacity slots.
func New[T cache.Page](opt cache.Options) (cache.Cache[T], error) {
	core, err := cache.NewCore(opt)
	if err != nil {
		return nil, err
	}
	c := &lrdCache[T]{Core: core, slots: slots.New[T](opt.Capacity)}
	c.nextAgeing = c.ageingPeriod()
	return c, nil
}

func (c *lrdCache[T]) ageingPeriod() int { return gclock.AgeingPeriod * c.slots.Cap() }

func (c *lrdCache[T]) Add(p T) error { return c.AddRef(p, 1) }

// AddRef advances the reference clock, then either increments the resident
// page with p's key or admits p with initialRefCount stamped with the clock.
func (c *lrdCache[T]) AddRef(p T, initialRefCount int) error {
	c.total++
	defer c.maintain()

	if old, _, ok := c.slots.Lookup(p.Key()); ok {
		old.IncReferenceCount()
		return nil
	}
	p.SetReferenceCount(min(max(initialRefCount, 1), cache.MaxRef))
	p.SetTimestamp(c.total)
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

// maintain runs the ageing and cleanup passes when the clock calls for them.
func (c *lrdCache[T]) maintain() {
	if c.total > gclock.CleanupFactor*c.slots.Cap() {
		c.cleanup()
		return
	}
	if c.total >= c.nextAgeing {
		gclock.Age(c.slots.Items())
		c.nextAgeing = c.total + c.ageingPeriod()
	}
}

// cleanup restarts the reference clock from the resident count.
func (c *lrdCache[T]) cleanup() {
	for i, p := range c.slots.Items() {
		p.SetReferenceCount(1)
		p.SetTimestamp(i)
	}
	c.total = c.slots.Len()
	c.nextAgeing = c.total + c.ageingPeriod()
	c.Logger().WithField("resident", c.total).Debug("reference clock restarted")
}

// density returns references per unit of age. Age is at least 1.
func density(refs, total, stamp int) float64 {
	return float64(refs) / float64(max(total-stamp, 1))
}

// victim returns the unloadable page with the lowest density; ties go to the
// lowest slot.
func (c *lrdCache[T]) victim() (int, error) {
	for dry := 0; ; {
		best, bestDensity := -1, 0.0
		for i, p := range c.slots.Items() {
			if !p.AllowUnload() {
				continue
			}
			d := density(p.ReferenceCount(), c.total, p.Timestamp())
			if best < 0 || d < bestDensity {
				best, bestDensity = i, d
			}
		}
		if best >= 0 {
			if err := c.Persist(c.slots.At(best)); err != nil {
				return -1, err
			}
			return best, nil
		}
		dry++
		if err := c.DrySweep(dry, c.slots.Len()); err != nil {
			return -1, err
		}
	}
}

func (c *lrdCache[T]) Get(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	c.Lookup(ok)
	return p, ok
}

func (c *lrdCache[T]) GetPage(p T) (T, bool) { return c.Get(p.Key()) }

func (c *lrdCache[T]) Peek(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	return p, ok
}

func (c *lrdCache[T]) Remove(p T) {
	if c.slots.Remove(p.Key()) {
		c.ReportSize(c.slots.Len())
	}
}

func (c *lrdCache[T]) Flush() (bool, error) { return cache.FlushPages(c.slots.Items(), false) }

func (c *lrdCache[T]) HasDirtyItems() bool { return cache.HasDirty(c.slots.Items()) }

func (c *lrdCache[T]) Len() int { return c.slots.Len() }

func (c *lrdCache[T]) UsedBuffers() int { return c.slots.Len() }

// Resize rebuilds the slot array. Stamps stay valid; only the ageing
// schedule follows the new capacity.
func (c *lrdCache[T]) Resize(newSize int) error {
	keep, err := cache.Rebuild(c.Core, gclock.ByReferenceCount(c.slots.Items()), newSize)
	if err != nil {
		return err
	}
	c.slots.Reset(newSize, keep)
	c.nextAgeing = c.total + c.ageingPeriod()
	c.ReportSize(c.slots.Len())
	return nil
}
