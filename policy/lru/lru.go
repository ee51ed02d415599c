// Package lru implements the LRU page cache and its B-tree-aware variant.
//
// Recency follows writes: Add moves a page to the newest position, Get does
// not. The victim is the oldest page that allows unloading.
package lru

import (
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/seqmap"
)

type lruCache[T cache.Page] struct {
	*cache.Core
	m *seqmap.Map[T]

	// protectInner spares inner pages for one full sweep (B-tree variant).
	protectInner bool
}

// New returns an LRU cache holding opt.Capacity pages.
func New[T cache.Page](opt cache.Options) (cache.Cache[T], error) {
	c, err := newCache[T](opt, false)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newCache[T cache.Page](opt cache.Options, protectInner bool) (*lruCache[T], error) {
	core, err := cache.NewCore(opt)
	if err != nil {
		return nil, err
	}
	return &lruCache[T]{
		Core:         core,
		m:            seqmap.New[T](opt.Capacity),
		protectInner: protectInner,
	}, nil
}

// Add makes p the newest page, evicting the oldest unloadable page first if
// the cache is full and p is not resident.
func (c *lruCache[T]) Add(p T) error {
	if c.m.Contains(p.Key()) || c.m.Len() < c.Buffers() {
		c.m.PushBack(p.Key(), p)
		c.ReportSize(c.m.Len())
		return nil
	}

	key, err := c.victim(p.Key())
	if err != nil {
		return err
	}
	c.m.Remove(key)
	c.Evicted(cache.EvictPolicy)
	c.m.PushBack(p.Key(), p)
	c.ReportSize(c.m.Len())
	c.Replaced(c, p)
	return nil
}

// AddRef is Add; the initial reference count has no meaning for LRU.
func (c *lruCache[T]) AddRef(p T, _ int) error { return c.Add(p) }

// victim returns the key of the evicted page after persisting it.
func (c *lruCache[T]) victim(incoming uint64) (uint64, error) {
	for dry := 0; ; {
		if c.protectInner {
			if key, ok, err := c.scan(incoming, true); ok || err != nil {
				return key, err
			}
		}
		if key, ok, err := c.scan(incoming, false); ok || err != nil {
			return key, err
		}
		dry++
		if err := c.DrySweep(dry, c.m.Len()); err != nil {
			return 0, err
		}
	}
}

// scan walks from the oldest page and persists the first candidate.
func (c *lruCache[T]) scan(incoming uint64, leavesOnly bool) (uint64, bool, error) {
	for key, p := range c.m.All() {
		if key == incoming || !p.AllowUnload() {
			continue
		}
		if leavesOnly && cache.IsInner(p) {
			continue
		}
		if err := c.Persist(p); err != nil {
			return 0, false, err
		}
		return key, true, nil
	}
	return 0, false, nil
}

// Get returns the resident page without changing its position.
func (c *lruCache[T]) Get(key uint64) (T, bool) {
	p, ok := c.m.Get(key)
	c.Lookup(ok)
	return p, ok
}

func (c *lruCache[T]) GetPage(p T) (T, bool) { return c.Get(p.Key()) }

func (c *lruCache[T]) Peek(key uint64) (T, bool) { return c.m.Get(key) }

func (c *lruCache[T]) Remove(p T) {
	if _, ok := c.m.Remove(p.Key()); ok {
		c.ReportSize(c.m.Len())
	}
}

func (c *lruCache[T]) Flush() (bool, error) { return cache.FlushPages(c.pages(), false) }

func (c *lruCache[T]) HasDirtyItems() bool {
	for _, p := range c.m.All() {
		if p.IsDirty() {
			return true
		}
	}
	return false
}

func (c *lruCache[T]) Len() int { return c.m.Len() }

func (c *lruCache[T]) UsedBuffers() int { return c.m.Len() }

// Resize keeps the newest pages on shrink. Survivors keep their order.
func (c *lruCache[T]) Resize(newSize int) error {
	newestFirst := make([]T, 0, c.m.Len())
	for _, p := range c.m.Backward() {
		newestFirst = append(newestFirst, p)
	}
	keep, err := cache.Rebuild(c.Core, newestFirst, newSize)
	if err != nil {
		return err
	}
	if len(keep) < c.m.Len() {
		kept := make(map[uint64]struct{}, len(keep))
		for _, p := range keep {
			kept[p.Key()] = struct{}{}
		}
		for key := range c.m.All() {
			if _, ok := kept[key]; !ok {
				c.m.Remove(key)
			}
		}
	}
	c.ReportSize(c.m.Len())
	return nil
}

// pages returns the residents from oldest to newest.
func (c *lruCache[T]) pages() []T {
	out := make([]T, 0, c.m.Len())
	for _, p := range c.m.All() {
		out = append(out, p)
	}
	return out
}
