package scancache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/buntdb"
)

// MemoryPath keeps the store in memory only
const MemoryPath = ":memory:"

// Store is the persistent key-value store used to keep the scan snapshot
// across restarts.
type Store interface {
	Save(key string, value []byte) error
	Load(key string) ([]byte, bool, error)
	Delete(key string) error
	Close() error
}

// BuntStore is a Store backed by a buntdb file
type BuntStore struct {
	db   *buntdb.DB
	once sync.Once
}

var _ Store = (*BuntStore)(nil)

// OpenBuntStore opens (or creates) the database at path. An empty path or
// MemoryPath keeps data in memory.
func OpenBuntStore(path string) (*BuntStore, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	var dbcfg buntdb.Config
	if err := db.ReadConfig(&dbcfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read cache db config: %w", err)
	}
	dbcfg.SyncPolicy = buntdb.EverySecond
	if err := db.SetConfig(dbcfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set cache db config: %w", err)
	}

	return &BuntStore{db: db}, nil
}

// Save implements Store
func (s *BuntStore) Save(key string, value []byte) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(value), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Load implements Store
func (s *BuntStore) Load(key string) ([]byte, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(key, false)
		if err != nil {
			if errors.Is(err, buntdb.ErrNotFound) {
				return nil
			}
			return err
		}
		value = val
		found = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Delete implements Store. Deleting a missing key is not an error.
func (s *BuntStore) Delete(key string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Delete(key); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Close flushes and closes the database
func (s *BuntStore) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}
