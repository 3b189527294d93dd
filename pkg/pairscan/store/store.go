// Package store persists scan results across process runs in a Badger
// database. Results are keyed like the in-memory cache, by canonical
// directory and depth, and carry the root directory's modification
// time so stale results read as misses.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pairscan/pairscan/pkg/pairscan/logging"
	"github.com/pairscan/pairscan/pkg/pairscan/scancache"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// ErrNotFound is returned when no usable result exists for a key.
// Stale, corrupt, and version-mismatched records also report it after
// being deleted.
var ErrNotFound = errors.New("stored result not found")

var logger = logging.Get("store")

// Store wraps Badger for scan result persistence.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult persists a result for (dir, depth). rootMod is the root
// directory's modification time at scan time; a later load compares it
// to decide freshness.
func (s *Store) SaveResult(dir string, depth int, rootMod time.Time, result *types.ScanResult) error {
	if result == nil {
		return nil
	}
	key := scancache.NormalizeKey(dir, depth)

	record := Record{
		Version:     StoreVersion,
		Dir:         key.Dir,
		Depth:       key.Depth,
		RootModNano: rootMod.UnixNano(),
		CreatedAt:   time.Now(),
		Result:      *result,
	}
	value, err := record.Encode()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resultKey(key.Dir, key.Depth), value)
	})
}

// LoadResult returns the stored result for (dir, depth). It reports
// ErrNotFound when nothing usable exists: a missing record, a record
// from another format version, a record that fails to decode, or one
// whose root modification time no longer matches rootMod. Unusable
// records are deleted so the next save starts clean. A zero rootMod
// skips the staleness check.
func (s *Store) LoadResult(dir string, depth int, rootMod time.Time) (*types.ScanResult, error) {
	key := scancache.NormalizeKey(dir, depth)

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(key.Dir, key.Depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	var record Record
	if err := record.Decode(value); err != nil {
		logger.Warn("deleting undecodable result record", "dir", key.Dir, "depth", key.Depth, "error", err)
		s.discard(key.Dir, key.Depth)
		return nil, ErrNotFound
	}
	if record.Version != StoreVersion {
		logger.Debug("deleting result record from other version", "dir", key.Dir, "version", record.Version)
		s.discard(key.Dir, key.Depth)
		return nil, ErrNotFound
	}
	if !rootMod.IsZero() && record.RootModNano != rootMod.UnixNano() {
		s.discard(key.Dir, key.Depth)
		return nil, ErrNotFound
	}

	result := record.Result
	return &result, nil
}

// DeleteResult removes the result for (dir, depth), if any.
func (s *Store) DeleteResult(dir string, depth int) error {
	key := scancache.NormalizeKey(dir, depth)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(resultKey(key.Dir, key.Depth))
	})
}

// DeleteDir removes results for dir at every depth. It returns the
// number of records removed.
func (s *Store) DeleteDir(dir string) (int, error) {
	key := scancache.NormalizeKey(dir, 0)
	prefix := dirPrefix(key.Dir)

	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// DeleteTree removes results for dir, its descendants, and its
// ancestors, matching the in-memory cache's cascading invalidation. It
// returns the number of records removed.
func (s *Store) DeleteTree(dir string) (int, error) {
	base := scancache.NormalizeKey(dir, 0).Dir
	prefix := keyspacePrefix()

	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			recordDir, ok := parseResultKey(key)
			if !ok {
				continue
			}
			if !withinTree(recordDir, base) && !withinTree(base, recordDir) {
				continue
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Clear removes every stored result.
func (s *Store) Clear() error {
	return s.db.DropPrefix(keyspacePrefix())
}

// Sweep removes records that can no longer serve a load: records from
// other format versions, records whose root directory is gone, and
// records whose root modification time has moved since the scan. It
// returns the number of records removed.
func (s *Store) Sweep() (int, error) {
	prefix := keyspacePrefix()

	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			var record Record
			if err := record.Decode(value); err == nil && record.Version == StoreVersion {
				info, statErr := os.Stat(record.Dir)
				if statErr == nil && info.ModTime().UnixNano() == record.RootModNano {
					continue
				}
			}

			if err := txn.Delete(item.KeyCopy(nil)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Stats summarizes the store contents.
type Stats struct {
	Entries   int
	LSMBytes  int64
	VLogBytes int64
}

// Stats counts stored results and reports on-disk size.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	prefix := keyspacePrefix()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stats.Entries++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	stats.LSMBytes, stats.VLogBytes = s.db.Size()
	return stats, nil
}

// discard deletes one record outside the read transaction, best
// effort.
func (s *Store) discard(dir string, depth int) {
	_ = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(resultKey(dir, depth))
	})
}

// withinTree reports whether dir is base or lies below it.
func withinTree(dir, base string) bool {
	if dir == base {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(base, sep) {
		base += sep
	}
	return strings.HasPrefix(dir, base)
}
