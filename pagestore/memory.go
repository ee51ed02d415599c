package pagestore

import (
	"sync"
	"sync/atomic"
)

// MemoryStore keeps pages in a map. It counts writes and syncs so tests can
// observe persistence.
type MemoryStore struct {
	pageSize int

	mu     sync.RWMutex
	pages  map[uint64][]byte
	closed bool

	writes atomic.Int64
	syncs  atomic.Int64
}

// NewMemory returns an empty in-memory store.
func NewMemory(pageSize int) *MemoryStore {
	return &MemoryStore{pageSize: pageSize, pages: make(map[uint64][]byte)}
}

func (s *MemoryStore) PageSize() int { return s.pageSize }

func (s *MemoryStore) Load(id uint64, buf []byte) error {
	if err := checkSize(buf, s.pageSize); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if data, ok := s.pages[id]; ok {
		copy(buf, data)
	} else {
		clear(buf)
	}
	return nil
}

func (s *MemoryStore) Store(id uint64, data []byte) error {
	if err := checkSize(data, s.pageSize); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.pages[id] = append([]byte(nil), data...)
	s.writes.Add(1)
	return nil
}

func (s *MemoryStore) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	s.syncs.Add(1)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

// Writes returns the number of Store calls.
func (s *MemoryStore) Writes() int64 { return s.writes.Load() }

// Syncs returns the number of Sync calls.
func (s *MemoryStore) Syncs() int64 { return s.syncs.Load() }

// Len returns the number of stored pages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}
