package cache

//go:generate mockgen -source resize.go -destination resize_mocks.go -package cache

// Resizable is the view a cache manager has of a cache.
type Resizable interface {
	// Name identifies the cache in logs and metrics.
	Name() string
	// Type tells which category of page file the cache serves.
	Type() Type

	// Buffers returns the capacity in pages.
	Buffers() int
	// UsedBuffers returns the number of resident pages.
	UsedBuffers() int

	// Hits returns the number of successful lookups.
	Hits() int64
	// Fails returns the number of failed lookups.
	Fails() int64
	// Load returns the hits since the previous call. The first call returns
	// math.MaxInt64 so a fresh cache never looks idle.
	Load() int64

	// GrowthFactor is the ratio by which the manager grows the cache.
	// A value <= 1.0 means the cache has a fixed size.
	GrowthFactor() float64

	// Resize rebuilds the cache with a new capacity. Growing keeps every
	// resident; shrinking flushes dirty pages first. Resize must not run
	// concurrently with any other operation on the cache.
	Resize(newSize int) error
}

// Manager owns the global page budget. A cache calls RequestMem on itself
// when its accounting reports thrashing and its growth factor is > 1.0;
// the manager may answer by calling Resize on the cache before returning.
// RequestMem returns the cache's capacity after the request.
type Manager interface {
	RequestMem(c Resizable) int
}
