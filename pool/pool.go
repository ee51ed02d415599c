// Package pool puts a page cache behind the lock of the page file it serves
// and loads missing pages on demand.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/singleflight"
)

// Loader reads a page that is not resident. ctx carries the values of the
// caller that started the load but is never cancelled.
type Loader[T cache.Page] func(ctx context.Context, key uint64) (T, error)

// Pinner is implemented by pages that can be pinned in memory.
type Pinner interface {
	Pin()
	Unpin()
}

// Manager is the cache manager a pool registers with.
type Manager interface {
	cache.Manager
	Register(c cache.Resizable, mu sync.Locker)
	Deregister(c cache.Resizable)
}

// ErrClosed is returned by a closed pool.
var ErrClosed = errors.New("pool: closed")

// BufferStats is a snapshot of a pool's cache.
type BufferStats struct {
	Buffers int   // capacity in pages
	Used    int   // resident pages
	Hits    int64 // successful lookups
	Fails   int64 // failed lookups
}

// HitRatio returns Hits/(Hits+Fails), or 0 before the first lookup.
func (s BufferStats) HitRatio() float64 {
	if total := s.Hits + s.Fails; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// Pool serializes every operation on one cache with a mutex and loads pages
// on miss. Concurrent misses on the same key share one load.
type Pool[T cache.Page] struct {
	mu     sync.Mutex // serializes c; handed to the manager
	c      cache.Cache[T]
	closed bool
	mgr    Manager

	load Loader[T]
	sf   singleflight.Group[uint64, T]
	log  logrus.FieldLogger
}

// New wraps c. load may be nil if pages only enter through Add; logger may
// be nil.
func New[T cache.Page](c cache.Cache[T], load Loader[T], logger logrus.FieldLogger) *Pool[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pool[T]{
		c:    c,
		load: load,
		log:  logger.WithField("cache", c.Name()),
	}
}

// Get returns the page for key, loading and admitting it on a miss.
func (p *Pool[T]) Get(ctx context.Context, key uint64) (T, error) {
	pg, _, err := p.get(ctx, key, false)
	return pg, err
}

// Acquire is Get that also pins the page (if it implements Pinner) before
// the pool lock is released. Call release when done with the page.
func (p *Pool[T]) Acquire(ctx context.Context, key uint64) (T, func(), error) {
	return p.get(ctx, key, true)
}

func (p *Pool[T]) get(ctx context.Context, key uint64, pin bool) (T, func(), error) {
	var zero T
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, nil, ErrClosed
	}
	if pg, ok := p.c.Get(key); ok {
		release := pinLocked(pg, pin)
		p.mu.Unlock()
		return pg, release, nil
	}
	p.mu.Unlock()

	if p.load == nil {
		return zero, nil, errors.New("pool: page not resident and no loader configured")
	}
	// Shared by every caller missing on key: no single caller cancels it.
	loadCtx := context.WithoutCancel(ctx)
	pg, shared, err := p.sf.Do(ctx, key, func() (T, error) {
		// A load for key may have finished between our miss and Do.
		p.mu.Lock()
		resident, ok := p.c.Peek(key)
		p.mu.Unlock()
		if ok {
			return resident, nil
		}
		loaded, err := p.load(loadCtx, key)
		if err != nil {
			return loaded, err
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return zero, ErrClosed
		}
		if resident, ok := p.c.Peek(key); ok {
			return resident, nil // added while we were loading
		}
		if err := p.c.Add(loaded); err != nil {
			return zero, err
		}
		return loaded, nil
	})
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).WithField("page", key).Warn("page load failed")
		}
		return zero, nil, err
	}
	if shared {
		p.log.WithField("page", key).Trace("shared page load")
	}

	var release func()
	if pin {
		// The page may have been evicted again between the load and now.
		p.mu.Lock()
		if resident, ok := p.c.Peek(key); ok {
			pg = resident
		}
		release = pinLocked(pg, true)
		p.mu.Unlock()
	}
	return pg, release, nil
}

func pinLocked[T cache.Page](pg T, pin bool) func() {
	if !pin {
		return nil
	}
	pn, ok := any(pg).(Pinner)
	if !ok {
		return func() {}
	}
	pn.Pin()
	var once sync.Once
	return func() { once.Do(pn.Unpin) }
}

// Add admits or touches pg.
func (p *Pool[T]) Add(pg T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.c.Add(pg)
}

// AddRef admits pg with an initial reference count.
func (p *Pool[T]) AddRef(pg T, initialRefCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.c.AddRef(pg, initialRefCount)
}

// Remove drops pg without persisting it.
func (p *Pool[T]) Remove(pg T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.c.Remove(pg)
}

// Flush persists every dirty resident page.
func (p *Pool[T]) Flush() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.c.Flush()
}

// Stats returns a snapshot of the cache counters.
func (p *Pool[T]) Stats() BufferStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return BufferStats{
		Buffers: p.c.Buffers(),
		Used:    p.c.UsedBuffers(),
		Hits:    p.c.Hits(),
		Fails:   p.c.Fails(),
	}
}

// Register hands the cache and the pool lock to m, which may then resize the
// cache.
func (p *Pool[T]) Register(m Manager) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mgr = m
	p.c.SetManager(m)
	m.Register(p.c, &p.mu)
}

// Close flushes the cache and deregisters it from its manager.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	_, err := p.c.Flush()
	mgr := p.mgr
	p.mu.Unlock()

	if mgr != nil {
		mgr.Deregister(p.c)
	}
	if err != nil {
		p.log.WithError(err).Error("flush on close failed")
	}
	return err
}
