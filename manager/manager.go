// Package manager distributes one memory budget over the page caches of a
// database instance.
//
// Caches ask for memory when they thrash (see cache.Manager). A maintenance
// loop takes memory back from caches that went idle and keeps B-tree caches
// from crowding out data caches.
//
// Lock order: a cache's lock is always taken before the manager's. RequestMem
// runs with the requesting cache's lock already held; maintenance never holds
// the manager lock while waiting for a cache lock.
package manager

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/cache"
)

// maxParallelShrinks bounds the caches resized concurrently by maintenance.
const maxParallelShrinks = 4

type entry struct {
	c     cache.Resizable
	lock  sync.Locker // serializes c; may be nil
	pages int         // capacity as last seen by the manager
}

// Manager implements cache.Manager over a fixed page budget.
type Manager struct {
	cfg        Config
	log        logrus.FieldLogger
	totalPages int

	mu      sync.Mutex
	caches  []*entry
	current int // sum of entry.pages
}

var _ cache.Manager = (*Manager)(nil)

// New returns a manager with a budget of cfg.CacheSize/cfg.PageSize pages.
func New(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "cache-manager"),
		totalPages: int(cfg.CacheSize / int64(cfg.PageSize)),
	}
	m.log.WithFields(logrus.Fields{
		"bytes": cfg.CacheSize,
		"pages": m.totalPages,
	}).Info("cache budget")
	return m
}

// Register adds c to the managed caches. mu is the lock that serializes c;
// maintenance holds it while resizing c. Registering twice is a no-op.
func (m *Manager) Register(c cache.Resizable, mu sync.Locker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(c) >= 0 {
		return
	}
	e := &entry{c: c, lock: mu, pages: c.Buffers()}
	m.caches = append(m.caches, e)
	m.current += e.pages
	if m.current > m.totalPages {
		m.log.WithFields(logrus.Fields{
			"cache":   c.Name(),
			"current": m.current,
			"total":   m.totalPages,
		}).Warn("registered caches exceed the budget")
	}
}

// Deregister removes c and returns its pages to the budget.
func (m *Manager) Deregister(c cache.Resizable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(c)
	if i < 0 {
		return
	}
	m.current -= m.caches[i].pages
	m.caches = slices.Delete(m.caches, i, i+1)
}

func (m *Manager) find(c cache.Resizable) int {
	return slices.IndexFunc(m.caches, func(e *entry) bool { return e.c == c })
}

// RequestMem grows c by its growth factor, by at least one page, as far as
// the budget allows. It is called by c itself, under c's lock.
func (m *Manager) RequestMem(c cache.Resizable) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := c.Buffers()
	i := m.find(c)
	if i < 0 {
		return cur
	}
	e := m.caches[i]
	e.pages = cur // pick up resizes done outside the manager
	m.current = m.sum()

	free := m.totalPages - m.current
	if free <= 0 {
		m.log.WithFields(logrus.Fields{
			"cache":  c.Name(),
			"pages":  cur,
			"budget": m.totalPages,
		}).Warn("cache budget exhausted, not growing")
		return cur
	}
	want := int(float64(cur) * c.GrowthFactor())
	if want <= cur {
		want = cur + 1
	}
	want = min(want, cur+free)

	if err := c.Resize(want); err != nil {
		m.log.WithError(err).WithField("cache", c.Name()).Warn("grow failed")
		return cur
	}
	e.pages = want
	m.current += want - cur
	m.log.WithFields(logrus.Fields{
		"cache": c.Name(),
		"from":  cur,
		"to":    want,
	}).Debug("grew cache")
	return want
}

func (m *Manager) sum() int {
	n := 0
	for _, e := range m.caches {
		n += e.pages
	}
	return n
}

func (m *Manager) snapshot() []*entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.caches)
}

// resize shrinks e.c to n pages under its lock and returns the pages freed.
// shrinkTo decides the target from the cache state, with the lock held; a
// result >= the current size skips the cache.
func (m *Manager) resize(e *entry, shrinkTo func(c cache.Resizable) int) int {
	if e.lock != nil {
		e.lock.Lock()
		defer e.lock.Unlock()
	}
	cur := e.c.Buffers()
	n := shrinkTo(e.c)
	if n >= cur {
		return 0
	}
	if err := e.c.Resize(n); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"cache": e.c.Name(),
			"from":  cur,
			"to":    n,
		}).Warn("shrink failed")
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(e.c) < 0 {
		return 0
	}
	freed := e.pages - n
	e.pages = n
	m.current = m.sum()
	return freed
}

// forEach runs fn on every entry with bounded parallelism and returns the
// sum of its results.
func (m *Manager) forEach(entries []*entry, fn func(e *entry) int) int {
	var (
		g     errgroup.Group
		mu    sync.Mutex
		total int
	)
	g.SetLimit(maxParallelShrinks)
	for _, e := range entries {
		g.Go(func() error {
			n := fn(e)
			mu.Lock()
			total += n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return total
}

// CheckCaches shrinks every growable cache that saw fewer than
// ShrinkThreshold hits since the previous check back to DefaultInitialSize.
// It returns the number of pages returned to the budget.
func (m *Manager) CheckCaches() int {
	if m.cfg.ShrinkThreshold <= 0 {
		return 0
	}
	initial := m.cfg.DefaultInitialSize
	freed := m.forEach(m.snapshot(), func(e *entry) int {
		return m.resize(e, func(c cache.Resizable) int {
			if c.GrowthFactor() <= 1.0 {
				return c.Buffers()
			}
			load := c.Load()
			if load >= m.cfg.ShrinkThreshold || c.Buffers() <= initial {
				return c.Buffers()
			}
			m.log.WithFields(logrus.Fields{
				"cache": c.Name(),
				"load":  load,
			}).Debug("shrinking idle cache")
			return initial
		})
	})
	if freed > 0 {
		m.log.WithField("pages", freed).Debug("reclaimed pages from idle caches")
	}
	return freed
}

// CheckDistribution shrinks B-tree caches proportionally when together they
// hold more than MaxBTreeShare of the budget. No cache goes below
// DefaultInitialSize. It returns the number of pages returned to the budget.
func (m *Manager) CheckDistribution() int {
	entries := m.snapshot()
	limit := int(float64(m.totalPages) * m.cfg.MaxBTreeShare)

	m.mu.Lock()
	var btree []*entry
	held := 0
	for _, e := range entries {
		if e.c.Type() == cache.TypeBTree {
			btree = append(btree, e)
			held += e.pages
		}
	}
	m.mu.Unlock()
	if held <= limit || held == 0 {
		return 0
	}

	m.log.WithFields(logrus.Fields{
		"held":  held,
		"limit": limit,
	}).Info("b-tree caches over their share, shrinking")
	return m.forEach(btree, func(e *entry) int {
		return m.resize(e, func(c cache.Resizable) int {
			return max(c.Buffers()*limit/held, m.cfg.DefaultInitialSize)
		})
	})
}

// Run performs maintenance every CheckInterval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	t := time.NewTicker(m.cfg.CheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.CheckCaches()
			m.CheckDistribution()
		}
	}
}

// TotalPages returns the budget in pages.
func (m *Manager) TotalPages() int { return m.totalPages }

// CurrentPages returns the pages held by registered caches.
func (m *Manager) CurrentPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Caches returns the registered caches.
func (m *Manager) Caches() []cache.Resizable {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cache.Resizable, len(m.caches))
	for i, e := range m.caches {
		out[i] = e.c
	}
	return out
}
