package cache

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// Store wraps Badger for cache operations.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates a cache store at the given path.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

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

// Get retrieves a cached result by digest and options key.
func (s *Store) Get(digest, optsKey string) (*CachedResult, error) {
	key := MakeKey(digest, optsKey)
	var entry CachedResult

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(entry.Decode)
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores a cached result.
func (s *Store) Put(digest, optsKey string, entry *CachedResult) error {
	key := MakeKey(digest, optsKey)
	value, err := entry.Encode()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a cached result.
func (s *Store) Delete(digest, optsKey string) error {
	key := MakeKey(digest, optsKey)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// DeletePrefix removes all entries of a digest, or every entry when digest
// is empty. It returns the number of entries removed.
func (s *Store) DeletePrefix(digest string) (int, error) {
	prefix := MakeKeyPrefix(digest)
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
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
