//go:build unix

package pagestore

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// FileStore keeps page id at offset id*pageSize of a single file. Reads and
// writes are positional, so concurrent page I/O needs no lock.
type FileStore struct {
	path     string
	pageSize int

	mu sync.RWMutex // guards f against Close
	f  *os.File
	fd int
}

// OpenFile opens or creates the page file at path.
func OpenFile(path string, pageSize int) (*FileStore, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size %d", ErrPageSize, pageSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"store": path, "page_size": pageSize}).Debug("page file opened")
	return &FileStore{path: path, pageSize: pageSize, f: f, fd: int(f.Fd())}, nil
}

func (s *FileStore) PageSize() int { return s.pageSize }

// Load reads page id. Bytes past the end of the file read as zero.
func (s *FileStore) Load(id uint64, buf []byte) error {
	if err := checkSize(buf, s.pageSize); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.f == nil {
		return ErrClosed
	}
	off := int64(id) * int64(s.pageSize)
	n := 0
	for n < len(buf) {
		m, err := unix.Pread(s.fd, buf[n:], off+int64(n))
		if err != nil {
			return fmt.Errorf("read page %d: %w", id, err)
		}
		if m == 0 {
			break // EOF
		}
		n += m
	}
	clear(buf[n:])
	return nil
}

// Store writes page id.
func (s *FileStore) Store(id uint64, data []byte) error {
	if err := checkSize(data, s.pageSize); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.f == nil {
		return ErrClosed
	}
	off := int64(id) * int64(s.pageSize)
	for n := 0; n < len(data); {
		m, err := unix.Pwrite(s.fd, data[n:], off+int64(n))
		if err != nil {
			return fmt.Errorf("write page %d: %w", id, err)
		}
		if m == 0 {
			return fmt.Errorf("write page %d: %w", id, io.ErrShortWrite)
		}
		n += m
	}
	return nil
}

// Sync flushes written pages to stable storage.
func (s *FileStore) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.f == nil {
		return ErrClosed
	}
	return datasync(s.f)
}

// Close syncs and closes the file. Further calls return ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	syncErr := datasync(s.f)
	closeErr := s.f.Close()
	s.f = nil
	logrus.WithField("store", s.path).Debug("page file closed")
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
