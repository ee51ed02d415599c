package pagestore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// syncKey is written synchronously to force the LevelDB journal to disk.
// Page keys are 8 bytes long, so it never collides with a page.
var syncKey = []byte("pagestore/sync")

// LevelDBStore keeps every page as one LevelDB value keyed by the big-endian
// page id.
type LevelDBStore struct {
	db       *leveldb.DB
	path     string
	pageSize int
}

// OpenLevelDB opens or creates a LevelDB page store in directory path.
func OpenLevelDB(path string, pageSize int) (*LevelDBStore, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size %d", ErrPageSize, pageSize)
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"store": path, "page_size": pageSize}).Debug("leveldb page store opened")
	return &LevelDBStore{db: db, path: path, pageSize: pageSize}, nil
}

func (s *LevelDBStore) PageSize() int { return s.pageSize }

func pageKey(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}

// Load reads page id; a page never stored reads as zeroes.
func (s *LevelDBStore) Load(id uint64, buf []byte) error {
	if err := checkSize(buf, s.pageSize); err != nil {
		return err
	}
	v, err := s.db.Get(pageKey(id), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		clear(buf)
		return nil
	case errors.Is(err, leveldb.ErrClosed):
		return ErrClosed
	case err != nil:
		return fmt.Errorf("read page %d: %w", id, err)
	}
	n := copy(buf, v)
	clear(buf[n:])
	return nil
}

// Store writes page id without waiting for the journal.
func (s *LevelDBStore) Store(id uint64, data []byte) error {
	if err := checkSize(data, s.pageSize); err != nil {
		return err
	}
	if err := s.db.Put(pageKey(id), data, nil); err != nil {
		if errors.Is(err, leveldb.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("write page %d: %w", id, err)
	}
	return nil
}

// Sync forces the journal, and with it every earlier write, to disk.
func (s *LevelDBStore) Sync() error {
	err := s.db.Put(syncKey, nil, &opt.WriteOptions{Sync: true})
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}

// Close syncs and closes the database.
func (s *LevelDBStore) Close() error {
	if err := s.Sync(); err != nil {
		return err
	}
	logrus.WithField("store", s.path).Debug("leveldb page store closed")
	return s.db.Close()
}
