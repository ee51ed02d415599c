package pagestore

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/pagecache/cache"
)

// Page is a cache.Page whose content lives in a Store.
//
// Content and the dirty flag are guarded by the page's own lock, so a
// writer and an evicting cache may touch the page from different
// goroutines. Reference count and timestamp belong to the owning cache and
// follow its serialization.
type Page struct {
	id    uint64
	inner bool
	store Store

	pins atomic.Int32

	mu    sync.Mutex
	data  []byte
	dirty bool

	refs int
	ts   int
}

var (
	_ cache.Page      = (*Page)(nil)
	_ cache.InnerPage = (*Page)(nil)
)

// NewPage returns a zeroed, clean page.
func NewPage(store Store, id uint64, inner bool) *Page {
	return &Page{id: id, inner: inner, store: store, data: make([]byte, store.PageSize())}
}

// LoadPage reads page id from store.
func LoadPage(store Store, id uint64, inner bool) (*Page, error) {
	p := NewPage(store, id, inner)
	if err := store.Load(id, p.data); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) Key() uint64 { return p.id }

// IsInnerPage reports whether the page is a B-tree index node.
func (p *Page) IsInnerPage() bool { return p.inner }

// ---- content ----

// Read copies the page content at off into b.
func (p *Page) Read(off int, b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if off < 0 || off > len(p.data) {
		return 0, fmt.Errorf("page %d: offset %d out of range", p.id, off)
	}
	return copy(b, p.data[off:]), nil
}

// Write copies b into the page at off and marks the page dirty.
func (p *Page) Write(off int, b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if off < 0 || off+len(b) > len(p.data) {
		return fmt.Errorf("page %d: write of %d bytes at %d exceeds page size %d", p.id, len(b), off, len(p.data))
	}
	copy(p.data[off:], b)
	p.dirty = true
	return nil
}

// IsDirty reports whether the page has unwritten modifications.
func (p *Page) IsDirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Sync stores a dirty page and, with syncJournal, syncs the store. A clean
// page is left alone. On failure the page stays dirty.
func (p *Page) Sync(syncJournal bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		return false, nil
	}
	if err := p.store.Store(p.id, p.data); err != nil {
		return false, err
	}
	if syncJournal {
		if err := p.store.Sync(); err != nil {
			return false, err
		}
	}
	p.dirty = false
	return true, nil
}

// ---- pinning ----

// Pin keeps the page resident until the matching Unpin.
func (p *Page) Pin() { p.pins.Add(1) }

// Unpin releases one Pin.
func (p *Page) Unpin() {
	if p.pins.Add(-1) < 0 {
		panic(fmt.Sprintf("pagestore: page %d unpinned more often than pinned", p.id))
	}
}

// AllowUnload reports whether the page is unpinned.
func (p *Page) AllowUnload() bool { return p.pins.Load() == 0 }

// ---- cache bookkeeping ----

func (p *Page) ReferenceCount() int { return p.refs }

func (p *Page) IncReferenceCount() int {
	if p.refs < cache.MaxRef {
		p.refs++
	}
	return p.refs
}

func (p *Page) DecReferenceCount() int {
	if p.refs > 0 {
		p.refs--
	}
	return p.refs
}

func (p *Page) SetReferenceCount(n int) { p.refs = n }

func (p *Page) Timestamp() int { return p.ts }

func (p *Page) SetTimestamp(ts int) { p.ts = ts }
