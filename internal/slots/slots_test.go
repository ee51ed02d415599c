package slots

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type item uint64

func (i item) Key() uint64 { return uint64(i) }

func TestArray_AppendLookupFull(t *testing.T) {
	t.Parallel()

	a := New[item](2)
	require.Equal(t, 0, a.Append(item(10)))
	require.Equal(t, 1, a.Append(item(20)))
	require.True(t, a.Full())

	v, i, ok := a.Lookup(20)
	require.True(t, ok)
	require.Equal(t, item(20), v)
	require.Equal(t, 1, i)

	_, _, ok = a.Lookup(30)
	require.False(t, ok)
	require.Panics(t, func() { a.Append(item(30)) })
}

// Removing a middle slot moves the last one into the hole.
func TestArray_RemoveKeepsDense(t *testing.T) {
	t.Parallel()

	a := New[item](4)
	for _, k := range []item{1, 2, 3, 4} {
		a.Append(k)
	}
	require.True(t, a.Remove(2))
	require.False(t, a.Remove(2))
	require.Equal(t, []item{1, 4, 3}, a.Items())

	_, i, ok := a.Lookup(4)
	require.True(t, ok)
	require.Equal(t, 1, i)

	a.RemoveAt(2)
	require.Equal(t, []item{1, 4}, a.Items())
}

func TestArray_ReplaceAndReset(t *testing.T) {
	t.Parallel()

	a := New[item](2)
	a.Append(1)
	a.Append(2)
	a.Replace(0, 7)

	_, _, ok := a.Lookup(1)
	require.False(t, ok)
	_, i, ok := a.Lookup(7)
	require.True(t, ok)
	require.Equal(t, 0, i)

	a.Reset(4, []item{2, 7})
	require.Equal(t, 4, a.Cap())
	require.False(t, a.Full())
	_, i, _ = a.Lookup(7)
	require.Equal(t, 1, i)
}
