// Package clock implements the Clock page cache: one reference flag per
// resident page and a circular scan that clears flags until it finds a page
// whose flag is already clear.
package clock

import (
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/slots"
	"github.com/IvanBrykalov/pagecache/policy/gclock"
)

type clockCache[T cache.Page] struct {
	*cache.Core
	slots *slots.Array[T]
}

// New returns a Clock cache with opt.Capacity slots.
func New[T cache.Page](opt cache.Options) (cache.Cache[T], error) {
	core, err := cache.NewCore(opt)
	if err != nil {
		return nil, err
	}
	return &clockCache[T]{Core: core, slots: slots.New[T](opt.Capacity)}, nil
}

// Add admits p with its reference flag set.
func (c *clockCache[T]) Add(p T) error { return c.AddRef(p, 1) }

// AddRef admits p. A resident page only gets its flag set again. A new page
// starts with the flag set unless initialRefCount <= 0.
func (c *clockCache[T]) AddRef(p T, initialRefCount int) error {
	if old, _, ok := c.slots.Lookup(p.Key()); ok {
		old.SetReferenceCount(1)
		return nil
	}
	if initialRefCount > 0 {
		p.SetReferenceCount(1)
	} else {
		p.SetReferenceCount(0)
	}
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

// victim sweeps from slot 0, clearing set flags, and returns the first
// unloadable slot whose flag was already clear. The victim is persisted.
func (c *clockCache[T]) victim() (int, error) {
	for dry := 0; ; {
		unloadable := false
		for i, p := range c.slots.Items() {
			if !p.AllowUnload() {
				continue
			}
			unloadable = true
			if p.ReferenceCount() > 0 {
				p.SetReferenceCount(0)
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

func (c *clockCache[T]) Get(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	c.Lookup(ok)
	return p, ok
}

func (c *clockCache[T]) GetPage(p T) (T, bool) { return c.Get(p.Key()) }

func (c *clockCache[T]) Peek(key uint64) (T, bool) {
	p, _, ok := c.slots.Lookup(key)
	return p, ok
}

func (c *clockCache[T]) Remove(p T) {
	if c.slots.Remove(p.Key()) {
		c.ReportSize(c.slots.Len())
	}
}

func (c *clockCache[T]) Flush() (bool, error) { return cache.FlushPages(c.slots.Items(), false) }

func (c *clockCache[T]) HasDirtyItems() bool { return cache.HasDirty(c.slots.Items()) }

func (c *clockCache[T]) Len() int { return c.slots.Len() }

func (c *clockCache[T]) UsedBuffers() int { return c.slots.Len() }

// Resize rebuilds the slot array. On shrink, pages with their flag set are
// preferred.
func (c *clockCache[T]) Resize(newSize int) error {
	keep, err := cache.Rebuild(c.Core, gclock.ByReferenceCount(c.slots.Items()), newSize)
	if err != nil {
		return err
	}
	c.slots.Reset(newSize, keep)
	c.ReportSize(c.slots.Len())
	return nil
}
