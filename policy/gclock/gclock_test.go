package gclock

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/pagetest"
)

func newGClock(t *testing.T, capacity int) *gclockCache[*pagetest.Page] {
	t.Helper()
	c, err := New[*pagetest.Page](cache.Options{Capacity: capacity})
	require.NoError(t, err)
	return c.(*gclockCache[*pagetest.Page])
}

func slotKeys(c *gclockCache[*pagetest.Page]) []uint64 {
	var out []uint64
	for _, p := range c.slots.Items() {
		out = append(out, p.ID)
	}
	return out
}

// Frequently re-added pages outlive pages added once.
func TestGClock_FrequencyWins(t *testing.T) {
	t.Parallel()

	c := newGClock(t, 2)
	hot := pagetest.New(1)
	for range 3 {
		require.NoError(t, c.Add(hot))
	}
	require.Equal(t, 3, hot.ReferenceCount())
	require.NoError(t, c.Add(pagetest.New(2)))
	require.NoError(t, c.Add(pagetest.New(3)))

	require.Equal(t, []uint64{1, 3}, slotKeys(c))
	require.Equal(t, 2, hot.ReferenceCount(), "one sweep decrements once")
}

func TestGClock_InitialRefCount(t *testing.T) {
	t.Parallel()

	c := newGClock(t, 2)
	p1, p2 := pagetest.New(1), pagetest.New(2)
	require.NoError(t, c.AddRef(p1, 5))
	require.NoError(t, c.AddRef(p2, 1))
	require.NoError(t, c.Add(pagetest.New(3)))

	require.Equal(t, []uint64{1, 3}, slotKeys(c))
	require.Equal(t, 4, p1.ReferenceCount())

	require.NoError(t, c.AddRef(pagetest.New(4), cache.MaxRef+5))
	p4, ok := c.Peek(4)
	require.True(t, ok)
	require.LessOrEqual(t, p4.ReferenceCount(), cache.MaxRef)
}

// Pinned pages are neither decremented nor chosen.
func TestGClock_SkipsPinned(t *testing.T) {
	t.Parallel()

	c := newGClock(t, 2)
	pinned, busy := pagetest.New(1), pagetest.New(2)
	require.NoError(t, c.AddRef(pinned, 1))
	require.NoError(t, c.AddRef(busy, 4))
	pinned.Pinned = true

	require.NoError(t, c.Add(pagetest.New(3)))
	require.Equal(t, []uint64{1, 3}, slotKeys(c))
	require.Equal(t, 1, pinned.ReferenceCount())
}

// Shrinking keeps the most referenced pages.
func TestGClock_ResizeKeepsHottest(t *testing.T) {
	t.Parallel()

	c := newGClock(t, 4)
	for i, refs := range []int{1, 7, 3, 5} {
		require.NoError(t, c.AddRef(pagetest.New(uint64(i+1)), refs))
	}
	require.NoError(t, c.Resize(2))

	got := slotKeys(c)
	slices.Sort(got)
	require.Equal(t, []uint64{2, 4}, got)
	require.Equal(t, 2, c.Buffers())
}

func TestAge(t *testing.T) {
	t.Parallel()

	pages := []*pagetest.Page{pagetest.New(1), pagetest.New(2), pagetest.New(3)}
	for i, n := range []int{9, 1, 0} {
		pages[i].SetReferenceCount(n)
	}
	Age(pages)
	require.Equal(t, 4, pages[0].ReferenceCount())
	require.Equal(t, 1, pages[1].ReferenceCount())
	require.Equal(t, 1, pages[2].ReferenceCount())
}
