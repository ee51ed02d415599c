package lru

import "github.com/IvanBrykalov/pagecache/cache"

// NewBTree returns the LRU variant for B-tree page files. When a victim is
// needed it first looks for an unloadable leaf page and only falls back to
// inner pages (see cache.InnerPage) after a full sweep found none, so index
// nodes outlive leaves by one sweep.
func NewBTree[T cache.Page](opt cache.Options) (cache.Cache[T], error) {
	if opt.Type == cache.TypeData {
		opt.Type = cache.TypeBTree
	}
	c, err := newCache[T](opt, true)
	if err != nil {
		return nil, err
	}
	return c, nil
}
