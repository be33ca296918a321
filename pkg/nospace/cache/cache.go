// Package cache stores analysis results in a Badger database keyed by the
// transcript's content digest and the analysis options, so re-analyzing an
// unchanged transcript skips parsing and building.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
)

var logger = logging.Get("cache")

// Cache provides high-level caching operations for nospace.
type Cache struct {
	store *Store
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	store, err := OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	return &Cache{store: store}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Lookup returns the cached result for a transcript digest and options.
// It returns ErrNotFound on a miss, including entries written by an older
// cache format.
func (c *Cache) Lookup(digest string, opts analyze.Options) (*analyze.Result, error) {
	optsKey := OptionsKey(opts)
	entry, err := c.store.Get(digest, optsKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Debug("cache miss", "digest", digest, "options", optsKey)
		}
		return nil, err
	}

	if entry.Version != CacheVersion {
		logger.Info("discarding stale cache entry", "digest", digest, "version", entry.Version)
		if err := c.store.Delete(digest, optsKey); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	logger.Debug("cache hit", "digest", digest, "options", optsKey)
	return entry.Result(), nil
}

// Save stores r under digest and the options it was computed with.
func (c *Cache) Save(digest string, r *analyze.Result) error {
	return c.store.Put(digest, OptionsKey(r.Options()), NewCachedResult(r))
}

// Clear removes all cached entries for a digest.
func (c *Cache) Clear(digest string) (int, error) {
	return c.store.DeletePrefix(digest)
}

// ClearAll removes all cached entries.
func (c *Cache) ClearAll() (int, error) {
	return c.store.DeletePrefix("")
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	return c.store.Count()
}

// Digest hashes a transcript's content as "<xxhash>-<length>".
func Digest(r io.Reader) (string, error) {
	h := xxhash.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", fmt.Errorf("hashing transcript: %w", err)
	}
	return strconv.FormatUint(h.Sum64(), 16) + "-" + strconv.FormatInt(n, 10), nil
}

// DigestFile hashes the file at path.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Digest(f)
}
