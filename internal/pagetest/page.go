// Package pagetest provides an in-memory cache.Page for tests and
// benchmarks.
package pagetest

import (
	"github.com/IvanBrykalov/pagecache/cache"
)

// Page is a cache.Page that records how it was persisted. It is not safe
// for concurrent use, matching the single-writer discipline of caches.
type Page struct {
	ID    uint64
	Inner bool

	Pinned  bool
	Dirty   bool
	SyncErr error // returned by Sync while set; the page stays dirty

	Syncs        int // successful syncs that wrote something
	JournalSyncs int // of which with syncJournal

	refs int
	ts   int
}

var (
	_ cache.Page      = (*Page)(nil)
	_ cache.InnerPage = (*Page)(nil)
)

// New returns a clean leaf page.
func New(id uint64) *Page { return &Page{ID: id} }

// NewInner returns a clean inner page.
func NewInner(id uint64) *Page { return &Page{ID: id, Inner: true} }

func (p *Page) Key() uint64 { return p.ID }

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

func (p *Page) Sync(syncJournal bool) (bool, error) {
	if !p.Dirty {
		return false, nil
	}
	if p.SyncErr != nil {
		return false, p.SyncErr
	}
	p.Dirty = false
	p.Syncs++
	if syncJournal {
		p.JournalSyncs++
	}
	return true, nil
}

func (p *Page) AllowUnload() bool { return !p.Pinned }

func (p *Page) IsDirty() bool { return p.Dirty }

func (p *Page) IsInnerPage() bool { return p.Inner }
