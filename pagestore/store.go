// Package pagestore persists fixed-size pages and provides Page, a
// cache.Page backed by a Store.
//
// Three stores are available: FileStore (one file, page id * page size
// offsets), LevelDBStore (pages as LevelDB values) and MemoryStore (tests
// and benchmarks). Pages never written read back as zeroes.
package pagestore

import (
	"errors"
	"fmt"
)

// Store loads and stores pages by id. Implementations are safe for
// concurrent use.
type Store interface {
	// PageSize returns the size of every page in bytes.
	PageSize() int
	// Load fills buf (len PageSize) with the page content.
	Load(id uint64, buf []byte) error
	// Store writes data (len PageSize) as the page content.
	Store(id uint64, data []byte) error
	// Sync makes every stored page durable.
	Sync() error
	// Close syncs and releases the store.
	Close() error
}

var (
	// ErrPageSize is returned when a buffer does not match the page size.
	ErrPageSize = errors.New("pagestore: buffer does not match page size")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("pagestore: store closed")
)

func checkSize(buf []byte, pageSize int) error {
	if len(buf) != pageSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPageSize, len(buf), pageSize)
	}
	return nil
}
