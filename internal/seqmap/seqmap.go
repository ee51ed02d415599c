// Package seqmap provides a map from page keys to values that remembers the
// order in which keys were last written.
package seqmap

import "iter"

// node is an intrusive doubly linked list element; head is the oldest entry,
// tail the newest.
type node[V any] struct {
	key uint64
	val V

	prev *node[V]
	next *node[V]
}

// Map is a key->value map with O(1) insert-at-newest, O(1) removal and
// iteration from the oldest entry. Not safe for concurrent use.
type Map[V any] struct {
	m    map[uint64]*node[V]
	head *node[V] // oldest
	tail *node[V] // newest
}

// New returns an empty map sized for capacity entries.
func New[V any](capacity int) *Map[V] {
	return &Map[V]{m: make(map[uint64]*node[V], capacity)}
}

// Len returns the number of entries.
func (s *Map[V]) Len() int { return len(s.m) }

// Get returns the value stored under key. Order is not changed.
func (s *Map[V]) Get(key uint64) (V, bool) {
	if n, ok := s.m[key]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (s *Map[V]) Contains(key uint64) bool {
	_, ok := s.m[key]
	return ok
}

// PushBack stores v under key and makes it the newest entry, whether or not
// key was already present.
func (s *Map[V]) PushBack(key uint64, v V) {
	if n, ok := s.m[key]; ok {
		n.val = v
		s.moveToBack(n)
		return
	}
	n := &node[V]{key: key, val: v}
	s.m[key] = n
	s.linkBack(n)
}

// Remove deletes key and returns its value.
func (s *Map[V]) Remove(key uint64) (V, bool) {
	n, ok := s.m[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.unlink(n)
	delete(s.m, key)
	return n.val, true
}

// All iterates from the oldest to the newest entry. Removing the entry being
// visited is allowed; other mutations during iteration are not.
func (s *Map[V]) All() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		for n := s.head; n != nil; {
			next := n.next
			if !yield(n.key, n.val) {
				return
			}
			n = next
		}
	}
}

// Backward iterates from the newest to the oldest entry.
func (s *Map[V]) Backward() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		for n := s.tail; n != nil; {
			prev := n.prev
			if !yield(n.key, n.val) {
				return
			}
			n = prev
		}
	}
}

// -------------------- list internals --------------------

func (s *Map[V]) linkBack(n *node[V]) {
	n.next = nil
	n.prev = s.tail
	if s.tail != nil {
		s.tail.next = n
	}
	s.tail = n
	if s.head == nil {
		s.head = n
	}
}

func (s *Map[V]) moveToBack(n *node[V]) {
	if n == s.tail {
		return
	}
	s.unlink(n)
	s.linkBack(n)
}

func (s *Map[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
