//go:build !unix

package pagestore

import (
	"errors"
	"fmt"
)

// FileStore is only available on unix systems.
type FileStore struct{}

// OpenFile fails with errors.ErrUnsupported on this platform.
func OpenFile(path string, pageSize int) (*FileStore, error) {
	return nil, fmt.Errorf("pagestore: page file %s: %w", path, errors.ErrUnsupported)
}

func (s *FileStore) PageSize() int              { return 0 }
func (s *FileStore) Load(uint64, []byte) error  { return errors.ErrUnsupported }
func (s *FileStore) Store(uint64, []byte) error { return errors.ErrUnsupported }
func (s *FileStore) Sync() error                { return errors.ErrUnsupported }
func (s *FileStore) Close() error               { return errors.ErrUnsupported }
