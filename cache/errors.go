package cache

import "fmt"

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrCacheSaturated is returned when no resident page allows unloading
	// and the retry budget (Options.MaxRetries) is used up.
	ErrCacheSaturated = constError("cache saturated: no evictable page")

	// ErrInvalidCapacity may be returned from constructors and Resize.
	ErrInvalidCapacity = constError("invalid capacity")
)

// SyncError reports that a page could not be persisted. The page stays
// resident.
type SyncError struct {
	Key uint64
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync page %d: %v", e.Key, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func invalidCapacityError(capacity int) error {
	return fmt.Errorf("%w: must be >=1 but %d was requested", ErrInvalidCapacity, capacity)
}

func saturatedError(name string, used int) error {
	return fmt.Errorf("%w: cache %q, all %d resident pages pinned", ErrCacheSaturated, name, used)
}

func pinnedError(pinned, capacity int) error {
	return fmt.Errorf("%w: %d pinned pages exceed capacity %d", ErrCacheSaturated, pinned, capacity)
}
