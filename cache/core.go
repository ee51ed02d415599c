package cache

import (
	"errors"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/IvanBrykalov/pagecache/accounting"
	"github.com/IvanBrykalov/pagecache/internal/counter"
)

// Core carries the bookkeeping every policy shares: options, load
// accounting, the manager callback, victim persistence, and metric and log
// emission. Policies embed a *Core next to their own resident structures;
// Core knows nothing about how residents are stored.
type Core struct {
	opt  Options
	size int // capacity in pages

	acct *accounting.Accounting
	log  logrus.FieldLogger

	_        counter.Pad
	evicts   counter.Counter
	loadBase atomic.Int64 // hits observed by the previous Load; -1 before the first call
}

// NewCore validates opt, applies defaults and returns the shared state of a
// cache with opt.Capacity pages.
func NewCore(opt Options) (*Core, error) {
	if opt.Capacity < 1 {
		return nil, invalidCapacityError(opt.Capacity)
	}
	opt = opt.withDefaults()
	c := &Core{
		opt:  opt,
		size: opt.Capacity,
		acct: accounting.New(opt.Capacity, opt.GrowthThreshold),
		log: opt.Logger.WithFields(logrus.Fields{
			"cache": opt.Name,
			"type":  opt.Type.String(),
		}),
	}
	c.loadBase.Store(-1)
	return c, nil
}

// ---- Resizable diagnostics ----

// Name identifies the cache in logs and metrics.
func (c *Core) Name() string { return c.opt.Name }

// Type tells which category of page file the cache serves.
func (c *Core) Type() Type { return c.opt.Type }

// Buffers returns the capacity in pages.
func (c *Core) Buffers() int { return c.size }

// GrowthFactor is the ratio by which the manager grows the cache.
func (c *Core) GrowthFactor() float64 { return c.opt.GrowthFactor }

// Hits returns the number of successful lookups.
func (c *Core) Hits() int64 { return c.acct.Hits() }

// Fails returns the number of failed lookups.
func (c *Core) Fails() int64 { return c.acct.Misses() }

// Thrashing returns the current thrashing estimate.
func (c *Core) Thrashing() int { return c.acct.Thrashing() }

// Evictions returns the number of pages evicted so far.
func (c *Core) Evictions() uint64 { return uint64(c.evicts.Load()) }

// Load returns the hits since the previous call; the first call returns
// math.MaxInt64.
func (c *Core) Load() int64 {
	hits := c.acct.Hits()
	prev := c.loadBase.Swap(hits)
	if prev < 0 {
		return math.MaxInt64
	}
	return hits - prev
}

// SetManager installs the manager asked for memory when the cache thrashes.
func (c *Core) SetManager(m Manager) { c.opt.Manager = m }

// Logger returns the cache-scoped logger.
func (c *Core) Logger() logrus.FieldLogger { return c.log }

// ---- bookkeeping used by policies ----

// Lookup records the outcome of a Get.
func (c *Core) Lookup(found bool) {
	if found {
		c.acct.HitIncrement()
		c.opt.Metrics.Hit()
		return
	}
	c.acct.MissIncrement()
	c.opt.Metrics.Miss()
}

// Persist forces a dirty victim to disk before its slot is reused.
// A failure is returned as *SyncError and the victim must stay resident.
func (c *Core) Persist(victim Page) error {
	if !victim.IsDirty() {
		return nil
	}
	if _, err := victim.Sync(true); err != nil {
		c.log.WithError(err).WithField("page", victim.Key()).Error("failed to persist victim page")
		return &SyncError{Key: victim.Key(), Err: err}
	}
	c.log.WithField("page", victim.Key()).Debug("persisted dirty victim")
	return nil
}

// Evicted records that a page left the cache.
func (c *Core) Evicted(reason EvictReason) {
	c.evicts.Inc()
	c.opt.Metrics.Evict(reason)
}

// Replaced feeds the accounting with the page that took a victim's place and
// asks the manager for memory when the cache thrashes. self is the cache
// the manager may resize; callers must not touch their resident structures
// through stale references after Replaced returns.
func (c *Core) Replaced(self Resizable, newItem Page) {
	c.acct.ReplacedPage(newItem)
	c.opt.Metrics.Thrashing(c.acct.Thrashing())
	if c.opt.GrowthFactor > 1.0 && c.opt.Manager != nil && c.acct.ResizeNeeded() {
		c.log.WithField("thrashing", c.acct.Thrashing()).Debug("requesting memory")
		c.opt.Manager.RequestMem(self)
	}
}

// DrySweep is called after a sweep over the resident set found no page that
// allows unloading. attempt counts dry sweeps of the current admission from
// 1. It returns ErrCacheSaturated once the budget is spent, and otherwise
// yields the processor so pinning goroutines can make progress.
func (c *Core) DrySweep(attempt, used int) error {
	if c.opt.MaxRetries >= 0 && attempt >= c.opt.MaxRetries {
		c.log.WithField("resident", used).Warn("cache saturated, admission refused")
		return saturatedError(c.opt.Name, used)
	}
	if attempt == 1 {
		c.log.WithField("resident", used).Warn("no evictable page, retrying")
	}
	runtime.Gosched()
	return nil
}

// ReportSize publishes occupancy.
func (c *Core) ReportSize(used int) { c.opt.Metrics.Size(used, c.size) }

// SetCapacity switches the core to a new capacity and restarts the
// accounting window.
func (c *Core) SetCapacity(n int) error {
	if n < 1 {
		return invalidCapacityError(n)
	}
	if n != c.size {
		c.log.WithFields(logrus.Fields{"from": c.size, "to": n}).Debug("resized")
		c.opt.Metrics.Resize(c.size, n)
	}
	c.size = n
	c.acct.Reset()
	c.acct.SetTotalSize(n)
	return nil
}

// FlushPages syncs every dirty page in pages. Every page is attempted;
// failures are joined.
func FlushPages[T Page](pages []T, syncJournal bool) (bool, error) {
	var (
		written bool
		errs    []error
	)
	for _, p := range pages {
		if !p.IsDirty() {
			continue
		}
		ok, err := p.Sync(syncJournal)
		if err != nil {
			errs = append(errs, &SyncError{Key: p.Key(), Err: err})
			continue
		}
		written = written || ok
	}
	return written, errors.Join(errs...)
}

// HasDirty reports whether any page in pages is dirty.
func HasDirty[T Page](pages []T) bool {
	for _, p := range pages {
		if p.IsDirty() {
			return true
		}
	}
	return false
}

// Retain splits residents for a shrink to n pages. byPreference lists the
// residents from most to least worth keeping. Pinned pages are kept first,
// then the rest in order. If pinned pages alone exceed n nothing is dropped
// and ErrCacheSaturated is returned.
func Retain[T Page](byPreference []T, n int) (keep, drop []T, err error) {
	keep = make([]T, 0, n)
	for _, p := range byPreference {
		if !p.AllowUnload() {
			keep = append(keep, p)
		}
	}
	if len(keep) > n {
		return nil, nil, pinnedError(len(keep), n)
	}
	for _, p := range byPreference {
		if !p.AllowUnload() {
			continue
		}
		if len(keep) < n {
			keep = append(keep, p)
		} else {
			drop = append(drop, p)
		}
	}
	return keep, drop, nil
}

// Rebuild switches c to capacity n and returns the residents the cache
// keeps, in preference order. byPreference lists every resident from most to
// least worth keeping. Growing keeps all of them. Shrinking flushes dirty
// pages first and drops the least preferred unpinned pages, counted as
// EvictShrink evictions. On error the core is unchanged.
func Rebuild[T Page](c *Core, byPreference []T, n int) ([]T, error) {
	if n < 1 {
		return nil, invalidCapacityError(n)
	}
	if n < c.size {
		if _, err := FlushPages(byPreference, true); err != nil {
			return nil, err
		}
	}
	if len(byPreference) <= n {
		if err := c.SetCapacity(n); err != nil {
			return nil, err
		}
		return byPreference, nil
	}
	keep, drop, err := Retain(byPreference, n)
	if err != nil {
		c.log.WithField("to", n).Warn("shrink refused, pinned pages exceed new capacity")
		return nil, err
	}
	if err := c.SetCapacity(n); err != nil {
		return nil, err
	}
	for range drop {
		c.Evicted(EvictShrink)
	}
	return keep, nil
}
