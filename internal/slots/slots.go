// Package slots implements the dense slot array used by clock-style caches:
// a fixed-capacity slice of residents plus a key->slot index.
package slots

// Keyed is anything identified by a page key.
type Keyed interface {
	Key() uint64
}

// Array holds at most Cap() items in slots 0..Len()-1. Slots stay dense:
// removing an item moves the last slot into the hole. Not safe for
// concurrent use.
type Array[T Keyed] struct {
	items []T
	index map[uint64]int
	cap   int
}

// New returns an empty array with room for capacity items.
func New[T Keyed](capacity int) *Array[T] {
	return &Array[T]{
		items: make([]T, 0, capacity),
		index: make(map[uint64]int, capacity),
		cap:   capacity,
	}
}

// Len returns the number of occupied slots.
func (a *Array[T]) Len() int { return len(a.items) }

// Cap returns the number of slots.
func (a *Array[T]) Cap() int { return a.cap }

// Full reports whether every slot is occupied.
func (a *Array[T]) Full() bool { return len(a.items) >= a.cap }

// At returns the item in slot i.
func (a *Array[T]) At(i int) T { return a.items[i] }

// Items returns the occupied slots. The slice aliases the array and is only
// valid until the next mutation.
func (a *Array[T]) Items() []T { return a.items }

// Lookup returns the item stored under key and its slot.
func (a *Array[T]) Lookup(key uint64) (T, int, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero T
		return zero, -1, false
	}
	return a.items[i], i, true
}

// Append stores v in the next free slot and returns the slot.
// It panics if the array is full.
func (a *Array[T]) Append(v T) int {
	if a.Full() {
		panic("slots: append to full array")
	}
	i := len(a.items)
	a.items = append(a.items, v)
	a.index[v.Key()] = i
	return i
}

// Replace puts v into slot i, dropping the previous occupant from the index.
func (a *Array[T]) Replace(i int, v T) {
	delete(a.index, a.items[i].Key())
	a.items[i] = v
	a.index[v.Key()] = i
}

// Remove deletes the item stored under key and reports whether it was present.
func (a *Array[T]) Remove(key uint64) bool {
	i, ok := a.index[key]
	if !ok {
		return false
	}
	a.RemoveAt(i)
	return true
}

// RemoveAt empties slot i, moving the last occupied slot into it.
func (a *Array[T]) RemoveAt(i int) {
	last := len(a.items) - 1
	delete(a.index, a.items[i].Key())
	if i != last {
		a.items[i] = a.items[last]
		a.index[a.items[i].Key()] = i
	}
	var zero T
	a.items[last] = zero
	a.items = a.items[:last]
}

// Reset replaces the contents with items (in slot order) and sets a new
// capacity. len(items) must not exceed capacity.
func (a *Array[T]) Reset(capacity int, items []T) {
	fresh := make([]T, len(items), capacity)
	copy(fresh, items)
	a.items = fresh
	a.cap = capacity
	a.index = make(map[uint64]int, capacity)
	for i, v := range fresh {
		a.index[v.Key()] = i
	}
}
