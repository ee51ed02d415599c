// Package singleflight coalesces concurrent loads of the same page.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanicked is returned to every caller of a call whose fn panicked.
var ErrPanicked = errors.New("singleflight: load panicked")

// Group runs at most one fn per key at a time; callers arriving while it
// runs share its result.
//
//   - fn runs on a goroutine of its own, started by the first caller.
//   - Every caller, the first included, waits for the result or for its own
//     ctx to end, whichever comes first. A caller that gives up does not
//     stop fn; fn must not depend on any single caller's ctx.
//   - A panic in fn is recovered and delivered as ErrPanicked.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	inflight map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{}
	val     V
	err     error
	callers int
	shared  bool
}

// Do runs fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result was
// delivered to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[K]*call[V])
	}
	c, ok := g.inflight[key]
	if !ok {
		c = &call[V]{done: make(chan struct{})}
		g.inflight[key] = c
		go g.run(key, c, fn)
	}
	c.callers++
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.shared, c.err
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	}
}

func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			c.val, c.err = zero, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		g.mu.Lock()
		delete(g.inflight, key)
		c.shared = c.callers > 1
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn()
}

// InFlight returns the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
