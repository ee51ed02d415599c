package lrd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/pagetest"
	"github.com/IvanBrykalov/pagecache/policy/gclock"
)

func newLRD(t *testing.T, capacity int) *lrdCache[*pagetest.Page] {
	t.Helper()
	c, err := New[*pagetest.Page](cache.Options{Capacity: capacity})
	require.NoError(t, err)
	return c.(*lrdCache[*pagetest.Page])
}

// With equal reference counts the older page has the lower density.
func TestLRD_OlderPageEvictedFirst(t *testing.T) {
	t.Parallel()

	c := newLRD(t, 2)
	older, younger := pagetest.New(1), pagetest.New(2)
	require.NoError(t, c.Add(older))
	require.NoError(t, c.Add(younger))
	require.Equal(t, 1, older.Timestamp())
	require.Equal(t, 2, younger.Timestamp())

	require.NoError(t, c.Add(pagetest.New(3)))
	_, ok := c.Peek(1)
	require.False(t, ok, "older page must be the victim")
	_, ok = c.Peek(2)
	require.True(t, ok)
}

// A page referenced often keeps a high density.
func TestLRD_HotPageSurvives(t *testing.T) {
	t.Parallel()

	c := newLRD(t, 2)
	cold, hot := pagetest.New(1), pagetest.New(2)
	require.NoError(t, c.Add(cold))
	for range 5 {
		require.NoError(t, c.Add(hot))
	}
	require.Equal(t, 5, hot.ReferenceCount())

	require.NoError(t, c.Add(pagetest.New(3)))
	_, ok := c.Peek(1)
	require.False(t, ok, "cold page must be the victim")
	_, ok = c.Peek(2)
	require.True(t, ok)
}

// The lowest-density page is skipped while pinned.
func TestLRD_SkipsPinned(t *testing.T) {
	t.Parallel()

	c := newLRD(t, 2)
	cold, hot := pagetest.New(1), pagetest.New(2)
	require.NoError(t, c.Add(cold))
	for range 5 {
		require.NoError(t, c.Add(hot))
	}
	cold.Pinned = true
	hot.Dirty = true

	require.NoError(t, c.Add(pagetest.New(3)))
	_, ok := c.Peek(1)
	require.True(t, ok)
	_, ok = c.Peek(2)
	require.False(t, ok)
	require.Equal(t, 1, hot.JournalSyncs)
}

// Counts are halved every AgeingPeriod*capacity references.
func TestLRD_Ageing(t *testing.T) {
	t.Parallel()

	c := newLRD(t, 1)
	p := pagetest.New(1)
	for range gclock.AgeingPeriod {
		require.NoError(t, c.Add(p))
	}
	require.Equal(t, gclock.AgeingPeriod, c.total)
	require.Equal(t, gclock.AgeingPeriod/gclock.AgeingDivisor, p.ReferenceCount())
}

// Passing CleanupFactor*capacity references restarts the clock.
func TestLRD_Cleanup(t *testing.T) {
	t.Parallel()

	c := newLRD(t, 1)
	p := pagetest.New(1)
	for range gclock.CleanupFactor + 1 {
		require.NoError(t, c.Add(p))
	}
	require.Equal(t, 1, c.total)
	require.Equal(t, 1, p.ReferenceCount())
	require.Equal(t, 0, p.Timestamp())
}

func TestDensity(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.5, density(1, 3, 1), 1e-9)
	// Age never drops below one.
	require.InDelta(t, 4.0, density(4, 7, 7), 1e-9)
	require.Less(t, density(2, 10, 1), density(2, 10, 5))
}
