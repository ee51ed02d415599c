package accounting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type key uint64

func (k key) Key() uint64 { return uint64(k) }

func TestAccounting_HitsAndMisses(t *testing.T) {
	t.Parallel()

	a := New(4, 0.5)
	a.HitIncrement()
	a.HitIncrement()
	a.MissIncrement()

	require.EqualValues(t, 2, a.Hits())
	require.EqualValues(t, 1, a.Misses())

	a.Reset()
	require.EqualValues(t, 2, a.Hits(), "reset must not clear cumulative hits")
	require.EqualValues(t, 1, a.Misses(), "reset must not clear cumulative misses")
}

func TestAccounting_FreshReplacementsAreNotThrashing(t *testing.T) {
	t.Parallel()

	a := New(4, 0.5)
	for i := 0; i < 100; i++ {
		a.ReplacedPage(key(i))
	}
	require.Zero(t, a.Thrashing())
	require.False(t, a.ResizeNeeded())
}

func TestAccounting_ReloadInsideWindowIsThrashing(t *testing.T) {
	t.Parallel()

	a := New(4, 0.5)
	a.ReplacedPage(key(1))
	a.ReplacedPage(key(2))
	a.ReplacedPage(key(1))
	a.ReplacedPage(key(2))

	require.Equal(t, 2, a.Thrashing())
	require.False(t, a.ResizeNeeded(), "2 is not above 4*0.5")

	a.ReplacedPage(key(1))
	require.Equal(t, 3, a.Thrashing())
	require.True(t, a.ResizeNeeded())
}

func TestAccounting_WindowIsBoundedByTotalSize(t *testing.T) {
	t.Parallel()

	a := New(2, 1)
	for i := 1; i <= 5; i++ {
		a.ReplacedPage(key(i)) // the fifth pushes 1 out of the window
	}
	a.ReplacedPage(key(1))

	require.Zero(t, a.Thrashing())
	require.Equal(t, 2*WindowFactor, a.window.Len())
}

func TestAccounting_SetTotalSizeShrinksWindow(t *testing.T) {
	t.Parallel()

	a := New(8, 1)
	for i := 0; i < 8; i++ {
		a.ReplacedPage(key(i))
	}
	a.SetTotalSize(3)
	require.Equal(t, 3*WindowFactor, a.window.Len())
	require.Len(t, a.index, 3*WindowFactor)

	// Only the six most recent keys survive.
	a.ReplacedPage(key(7))
	require.Equal(t, 1, a.Thrashing())
	a.ReplacedPage(key(0))
	require.Equal(t, 1, a.Thrashing())
}

func TestAccounting_ZeroThresholdNeverResizes(t *testing.T) {
	t.Parallel()

	a := New(1, 0)
	for i := 0; i < 10; i++ {
		a.ReplacedPage(key(7))
	}
	require.Equal(t, 9, a.Thrashing())
	require.False(t, a.ResizeNeeded())
}

func TestAccounting_ResetClearsWindow(t *testing.T) {
	t.Parallel()

	a := New(4, 0.25)
	a.ReplacedPage(key(1))
	a.ReplacedPage(key(1))
	a.ReplacedPage(key(1))
	require.True(t, a.ResizeNeeded())

	a.Reset()
	require.Zero(t, a.Thrashing())
	require.False(t, a.ResizeNeeded())
	a.ReplacedPage(key(1))
	require.Zero(t, a.Thrashing(), "window must be empty after reset")
}
