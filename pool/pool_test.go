package pool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/pagestore"
	"github.com/IvanBrykalov/pagecache/policy"
	"github.com/IvanBrykalov/pagecache/pool"
)

const pageSize = 64

func newPool(t *testing.T, kind policy.Kind, capacity int, load pool.Loader[*pagestore.Page]) *pool.Pool[*pagestore.Page] {
	t.Helper()
	logger, _ := test.NewNullLogger()
	c, err := policy.New[*pagestore.Page](kind, cache.Options{
		Name:     "pool-test",
		Capacity: capacity,
		Logger:   logger,
	})
	require.NoError(t, err)
	return pool.New(c, load, logger)
}

func storeLoader(store pagestore.Store, calls *atomic.Int64) pool.Loader[*pagestore.Page] {
	return func(_ context.Context, key uint64) (*pagestore.Page, error) {
		if calls != nil {
			calls.Add(1)
		}
		return pagestore.LoadPage(store, key, false)
	}
}

func TestPool_GetLoadsOnMiss(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	var calls atomic.Int64
	p := newPool(t, policy.LRU, 4, storeLoader(store, &calls))

	pg, err := p.Get(context.Background(), 7)
	require.NoError(t, err)
	require.EqualValues(t, 7, pg.Key())

	again, err := p.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Same(t, pg, again)
	require.EqualValues(t, 1, calls.Load())

	st := p.Stats()
	require.Equal(t, 4, st.Buffers)
	require.Equal(t, 1, st.Used)
	require.EqualValues(t, 1, st.Hits)
	require.EqualValues(t, 1, st.Fails)
	require.InDelta(t, 0.5, st.HitRatio(), 1e-9)
}

func TestPool_LoaderErrorAdmitsNothing(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	p := newPool(t, policy.Clock, 2, func(context.Context, uint64) (*pagestore.Page, error) {
		return nil, boom
	})

	_, err := p.Get(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.Zero(t, p.Stats().Used)
}

func TestPool_GetWithoutLoader(t *testing.T) {
	t.Parallel()

	p := newPool(t, policy.LRU, 2, nil)
	_, err := p.Get(context.Background(), 1)
	require.Error(t, err)

	store := pagestore.NewMemory(pageSize)
	pg := pagestore.NewPage(store, 1, false)
	require.NoError(t, p.Add(pg))
	got, err := p.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Same(t, pg, got)
}

func TestPool_AcquirePinsUntilRelease(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	p := newPool(t, policy.GClock, 1, storeLoader(store, nil))

	pg, release, err := p.Acquire(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, pg.AllowUnload())

	err = p.Add(pagestore.NewPage(store, 2, false))
	require.ErrorIs(t, err, cache.ErrCacheSaturated)

	release()
	release() // idempotent
	require.True(t, pg.AllowUnload())
	require.NoError(t, p.Add(pagestore.NewPage(store, 2, false)))
}

func TestPool_RemoveDropsWithoutWriting(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	p := newPool(t, policy.LRD, 4, storeLoader(store, nil))

	pg := pagestore.NewPage(store, 3, false)
	require.NoError(t, pg.Write(0, []byte("dirty")))
	require.NoError(t, p.Add(pg))
	p.Remove(pg)

	require.Zero(t, p.Stats().Used)
	require.Zero(t, store.Writes())
}

type recordingManager struct {
	mu           sync.Mutex
	registered   []cache.Resizable
	deregistered []cache.Resizable
	locks        []sync.Locker
}

func (m *recordingManager) RequestMem(c cache.Resizable) int { return c.Buffers() }

func (m *recordingManager) Register(c cache.Resizable, mu sync.Locker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, c)
	m.locks = append(m.locks, mu)
}

func (m *recordingManager) Deregister(c cache.Resizable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deregistered = append(m.deregistered, c)
}

func TestPool_CloseFlushesAndDeregisters(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	p := newPool(t, policy.LRU, 4, storeLoader(store, nil))
	mgr := &recordingManager{}
	p.Register(mgr)
	require.Len(t, mgr.registered, 1)
	require.NotNil(t, mgr.locks[0])

	pg, err := p.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, pg.Write(0, []byte("abc")))

	written, err := p.Flush()
	require.NoError(t, err)
	require.True(t, written)
	require.False(t, pg.IsDirty())

	require.NoError(t, pg.Write(0, []byte("def")))
	require.NoError(t, p.Close())
	require.False(t, pg.IsDirty())
	require.EqualValues(t, 2, store.Writes())
	require.Equal(t, mgr.registered, mgr.deregistered)

	_, err = p.Get(context.Background(), 1)
	require.ErrorIs(t, err, pool.ErrClosed)
	require.ErrorIs(t, p.Add(pagestore.NewPage(store, 9, false)), pool.ErrClosed)
	require.ErrorIs(t, p.Close(), pool.ErrClosed)
}

// One hundred goroutines Get the same missing page; it is loaded once.
func TestRace_GetCoalescesLoads(t *testing.T) {
	store := pagestore.NewMemory(pageSize)
	var calls atomic.Int64
	slow := func(ctx context.Context, key uint64) (*pagestore.Page, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond) // simulate I/O
		return pagestore.LoadPage(store, key, false)
	}
	p := newPool(t, policy.LRU, 16, slow)

	const goroutines = 100
	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			<-start
			pg, err := p.Get(context.Background(), 42)
			if err != nil {
				return err
			}
			if pg.Key() != 42 {
				return errors.New("wrong page")
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, 1, p.Stats().Used)
}

// Readers, writers and flushers share a small pool over a real store.
func TestRace_MixedWorkload(t *testing.T) {
	store := pagestore.NewMemory(pageSize)
	kinds := []policy.Kind{policy.Clock, policy.GClock, policy.LRD, policy.LRU, policy.BTree}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			p := newPool(t, kind, 8, storeLoader(store, nil))
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)
			for w := 0; w < 4; w++ {
				g.Go(func() error {
					for i := uint64(w); ctx.Err() == nil; i++ {
						pg, release, err := p.Acquire(ctx, i%32)
						if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
							return nil
						}
						if err != nil && !errors.Is(err, cache.ErrCacheSaturated) {
							return err
						}
						if err != nil {
							continue
						}
						if i%3 == 0 {
							if err := pg.Write(0, []byte{byte(i)}); err != nil {
								release()
								return err
							}
						}
						release()
					}
					return nil
				})
			}
			g.Go(func() error {
				for ctx.Err() == nil {
					if _, err := p.Flush(); err != nil {
						return err
					}
					time.Sleep(time.Millisecond)
				}
				return nil
			})
			require.NoError(t, g.Wait())
			require.LessOrEqual(t, p.Stats().Used, 8)
			require.NoError(t, p.Close())
		})
	}
}

func TestPool_AddRefSetsInitialCount(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	p := newPool(t, policy.GClock, 2, nil)

	root := pagestore.NewPage(store, 1, true)
	require.NoError(t, p.AddRef(root, 2))
	require.Equal(t, 2, root.ReferenceCount())

	require.NoError(t, p.Add(root))
	require.Equal(t, 3, root.ReferenceCount(), "re-add bumps the count")
}

// A caller that gives up does not fail the callers waiting on the same load.
func TestPool_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	store := pagestore.NewMemory(pageSize)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := newPool(t, policy.LRU, 4, func(ctx context.Context, key uint64) (*pagestore.Page, error) {
		started <- struct{}{}
		select {
		case <-release:
			return pagestore.LoadPage(store, key, false)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := p.Get(ctx, 5)
		first <- err
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		pg, err := p.Get(context.Background(), 5)
		if err == nil && pg.Key() != 5 {
			err = errors.New("wrong page")
		}
		second <- err
	}()

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)
	close(release)
	require.NoError(t, <-second)
	require.Equal(t, 1, p.Stats().Used)
}
