package cache

// Cache is a keyed container of resident pages with a fixed capacity and a
// pluggable victim-selection policy.
//
// Caches are not safe for concurrent use. Add, Get, Remove, Flush and Resize
// on one instance must be serialized by the caller, typically with the lock
// of the page file the cache serves (see package pool). Diagnostics (Hits,
// Fails, Buffers) may be read concurrently.
type Cache[T Page] interface {
	Resizable

	// Add admits p with the policy's default initial reference count, or
	// touches the resident page with the same key. When the cache is full a
	// victim is selected, persisted if dirty, and removed. Add returns an
	// error only if no victim could be evicted; in that case p is not
	// admitted and every resident page is still resident.
	Add(p T) error

	// AddRef is Add with an explicit initial reference count.
	// Policies that derive the count themselves ignore it.
	AddRef(p T, initialRefCount int) error

	// Get returns the resident page for key. It counts a hit or a miss.
	// A pure read never changes eviction order.
	Get(key uint64) (T, bool)

	// GetPage is Get(p.Key()).
	GetPage(p T) (T, bool)

	// Peek looks a page up without touching hit/miss accounting.
	Peek(key uint64) (T, bool)

	// Remove drops p from the cache without persisting it. Removing a page
	// that is not resident does nothing and is not counted as a miss.
	Remove(p T)

	// Flush persists every dirty resident without evicting it and reports
	// whether anything was written.
	Flush() (bool, error)

	// HasDirtyItems reports whether any resident page is dirty.
	HasDirtyItems() bool

	// Len returns the number of resident pages.
	Len() int

	// SetManager installs the manager asked for memory when the cache is
	// thrashing.
	SetManager(m Manager)
}
