package cache

// MaxRef is the upper bound of a page's reference count.
const MaxRef = 10000

// Page is the contract every cacheable storage page satisfies.
//
// The key identifies the page within one cache and never changes while the
// page is resident. Reference count and timestamp belong to the cache: only
// the owning cache mutates them, and their meaning is policy-defined (an
// access flag for Clock, a frequency counter for GClock and LRD, an
// insertion marker for LRD timestamps). Content and the dirty state belong to
// the storage layer that produced the page.
type Page interface {
	// Key returns the page identifier.
	Key() uint64

	// ReferenceCount returns the current reference count.
	ReferenceCount() int
	// IncReferenceCount increments the reference count, saturating at
	// MaxRef, and returns the new value.
	IncReferenceCount() int
	// DecReferenceCount decrements the reference count, flooring at 0, and
	// returns the new value.
	DecReferenceCount() int
	// SetReferenceCount overwrites the reference count.
	SetReferenceCount(n int)

	// Timestamp returns the policy-defined marker.
	Timestamp() int
	// SetTimestamp overwrites the policy-defined marker.
	SetTimestamp(ts int)

	// Sync persists pending changes and reports whether anything was
	// written. Calling Sync on a clean page is a no-op returning false.
	// syncJournal forces the journal to disk as well.
	Sync(syncJournal bool) (bool, error)

	// AllowUnload reports whether the page may be evicted right now. It is
	// false while the page is pinned, e.g. by an open cursor or an
	// in-flight transaction.
	AllowUnload() bool

	// IsDirty reports whether the page has unwritten modifications.
	IsDirty() bool
}

// InnerPage is implemented by B-tree pages that know whether they are an
// index (branch) node. Pages that don't implement it are treated as leaves.
type InnerPage interface {
	IsInnerPage() bool
}

// IsInner reports whether p is a B-tree inner page.
func IsInner(p Page) bool {
	ip, ok := p.(InnerPage)
	return ok && ip.IsInnerPage()
}
