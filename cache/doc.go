// Package cache defines the page cache contracts shared by the eviction
// policies in package policy.
//
// Design
//
//   - Pages: a Page carries a stable key, a reference count and a timestamp
//     owned by the cache, and dirty and pinned state owned by the storage
//     layer. A dirty page chosen as a victim is synced (with the journal)
//     before its slot is reused; a pinned page (AllowUnload false) is never
//     a victim.
//
//   - Policies: Clock, GClock, LRD, LRU and the B-tree aware LRU each
//     implement Cache[T] on their own resident structures and share the
//     bookkeeping in Core (load accounting, manager callback, metrics and
//     logging).
//
//   - Sizing: every cache feeds its Accounting with the pages admitted
//     through replacement. When the estimated thrashing exceeds
//     Options.GrowthThreshold and the growth factor is above 1.0, the cache
//     calls Manager.RequestMem on itself; the manager may answer with
//     Resize.
//
//   - Saturation: an admission that finds every resident pinned retries
//     Options.MaxRetries times and then fails with ErrCacheSaturated. A
//     negative MaxRetries retries forever.
//
// Basic usage
//
//	c, err := lru.New[*pagestore.Page](cache.Options{Name: "dom.dbx", Capacity: 256})
//	if err != nil {
//	    return err
//	}
//	if err := c.Add(page); err != nil {
//	    return err // a victim could not be persisted, or the cache is saturated
//	}
//	if p, ok := c.Get(page.Key()); ok {
//	    _ = p
//	}
//
// Concurrency
//
// Caches are single-writer: callers serialize Add, Get, Remove, Flush and
// Resize, usually with the lock of the page file the cache serves. Package
// pool wraps a cache with that lock. Hit and miss counters may be read
// concurrently.
package cache
