// Package accounting tracks the load of a single page cache: hits, misses and
// a thrashing estimate derived from pages that come back shortly after being
// replaced. It decides when a cache is undersized; who grows the cache is
// somebody else's business (see cache.Manager).
package accounting

import (
	"container/list"

	"github.com/IvanBrykalov/pagecache/internal/counter"
)

// WindowFactor times the total size bounds the replacement window. A page
// evicted by strict LRU comes back no earlier than one full turnover of the
// cache, so the window has to span more than one cache worth of keys.
const WindowFactor = 2

// Keyed is the part of a cached page the accounting needs.
type Keyed interface {
	Key() uint64
}

// Accounting keeps per-cache load counters.
//
// Hits and misses are atomic so diagnostics may be read by the cache manager
// or a metrics scraper while the owning cache is in use. The replacement
// window and the thrashing counter are mutated only by the owning cache and
// follow its serialization discipline.
type Accounting struct {
	hits   counter.Counter
	misses counter.Counter

	// ---- owned by the cache ----
	growthThreshold float64
	totalSize       int
	thrashing       int

	// FIFO window of keys admitted through replacement: oldest at Front().
	window *list.List
	index  map[uint64]*list.Element
}

// New creates an Accounting. growthThreshold is the fraction of totalSize
// that thrashing must exceed before a resize is considered needed; a
// non-positive threshold disables resize requests.
func New(totalSize int, growthThreshold float64) *Accounting {
	a := &Accounting{
		growthThreshold: growthThreshold,
		window:          list.New(),
		index:           make(map[uint64]*list.Element),
	}
	a.SetTotalSize(totalSize)
	return a
}

// HitIncrement records a successful lookup.
func (a *Accounting) HitIncrement() { a.hits.Inc() }

// MissIncrement records a failed lookup.
func (a *Accounting) MissIncrement() { a.misses.Inc() }

// ReplacedPage is called on every eviction with the page that took the
// victim's place. A page admitted through replacement while its key is still
// in the window was evicted and reloaded recently: that is thrashing.
func (a *Accounting) ReplacedPage(item Keyed) {
	if a.totalSize <= 0 {
		return
	}
	key := item.Key()
	if e, ok := a.index[key]; ok {
		a.thrashing++
		a.window.MoveToBack(e)
		return
	}
	for a.window.Len() >= a.windowSize() {
		a.dropOldest()
	}
	a.index[key] = a.window.PushBack(key)
}

// ResizeNeeded reports whether replacements hit recently replaced pages more
// often than the growth threshold allows.
func (a *Accounting) ResizeNeeded() bool {
	if a.growthThreshold <= 0 || a.totalSize <= 0 {
		return false
	}
	return float64(a.thrashing) > float64(a.totalSize)*a.growthThreshold
}

// SetTotalSize sets the size of the cache being accounted. The replacement
// window never holds more than WindowFactor*n keys.
func (a *Accounting) SetTotalSize(n int) {
	if n < 0 {
		n = 0
	}
	a.totalSize = n
	for a.window.Len() > a.windowSize() {
		a.dropOldest()
	}
}

func (a *Accounting) windowSize() int { return WindowFactor * a.totalSize }

// Reset clears the replacement window and the thrashing estimate.
// Hit and miss counters are cumulative and survive a reset.
func (a *Accounting) Reset() {
	a.window.Init()
	clear(a.index)
	a.thrashing = 0
}

// Hits returns the number of successful lookups.
func (a *Accounting) Hits() int64 { return a.hits.Load() }

// Misses returns the number of failed lookups.
func (a *Accounting) Misses() int64 { return a.misses.Load() }

// Thrashing returns the number of reloads of recently replaced pages since
// the last Reset.
func (a *Accounting) Thrashing() int { return a.thrashing }

func (a *Accounting) dropOldest() {
	front := a.window.Front()
	if front == nil {
		return
	}
	delete(a.index, front.Value.(uint64))
	a.window.Remove(front)
}
