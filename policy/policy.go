// Package policy names the available eviction policies and builds caches by
// name. The implementations live in the sub-packages.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/policy/clock"
	"github.com/IvanBrykalov/pagecache/policy/gclock"
	"github.com/IvanBrykalov/pagecache/policy/lrd"
	"github.com/IvanBrykalov/pagecache/policy/lru"
)

// Kind identifies an eviction policy.
type Kind string

const (
	Clock  Kind = "clock"  // single reference flag, circular scan
	GClock Kind = "gclock" // frequency counters, decrement sweep
	LRD    Kind = "lrd"    // least reference density
	LRU    Kind = "lru"    // write-order LRU
	BTree  Kind = "btree"  // LRU sparing B-tree inner pages
)

// ErrUnknownKind is returned for policy names that are not registered.
var ErrUnknownKind = errors.New("unknown cache policy")

// Kinds lists every policy in a stable order.
func Kinds() []Kind { return []Kind{Clock, GClock, LRD, LRU, BTree} }

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New builds a cache of the given kind.
func New[T cache.Page](k Kind, opt cache.Options) (cache.Cache[T], error) {
	switch k {
	case Clock:
		return clock.New[T](opt)
	case GClock:
		return gclock.New[T](opt)
	case LRD:
		return lrd.New[T](opt)
	case LRU:
		return lru.New[T](opt)
	case BTree:
		return lru.NewBTree[T](opt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}
