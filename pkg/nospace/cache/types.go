package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
)

// CacheVersion is incremented when the cache format changes.
const CacheVersion = 1

// KeySeparator separates the transcript digest from the options in cache keys.
const KeySeparator = '\x00'

// CachedResult is the stored form of an analysis result. The tree itself
// is not cached.
type CachedResult struct {
	Version    int
	Source     string
	TotalSize  uint64
	Dirs       int
	Files      int
	SmallLimit uint64
	SmallDirs  []analyze.DirSummary
	SmallSum   uint64
	Capacity   uint64
	Required   uint64
	Unused     uint64
	NeedToFree uint64
	Candidate  *analyze.DirSummary
	StoredAt   int64 // UnixNano
}

// NewCachedResult copies the cacheable fields of r.
func NewCachedResult(r *analyze.Result) *CachedResult {
	return &CachedResult{
		Version:    CacheVersion,
		Source:     r.Source,
		TotalSize:  r.TotalSize,
		Dirs:       r.Dirs,
		Files:      r.Files,
		SmallLimit: r.SmallLimit,
		SmallDirs:  r.SmallDirs,
		SmallSum:   r.SmallSum,
		Capacity:   r.Capacity,
		Required:   r.Required,
		Unused:     r.Unused,
		NeedToFree: r.NeedToFree,
		Candidate:  r.Candidate,
		StoredAt:   time.Now().UnixNano(),
	}
}

// Result converts the entry back into an analysis result marked as cached.
func (c *CachedResult) Result() *analyze.Result {
	smallDirs := c.SmallDirs
	if smallDirs == nil {
		smallDirs = []analyze.DirSummary{}
	}
	return &analyze.Result{
		Source:     c.Source,
		TotalSize:  c.TotalSize,
		Dirs:       c.Dirs,
		Files:      c.Files,
		SmallLimit: c.SmallLimit,
		SmallDirs:  smallDirs,
		SmallSum:   c.SmallSum,
		Capacity:   c.Capacity,
		Required:   c.Required,
		Unused:     c.Unused,
		NeedToFree: c.NeedToFree,
		Candidate:  c.Candidate,
		Cached:     true,
	}
}

// Encode serializes the entry to bytes using gob.
func (c *CachedResult) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (c *CachedResult) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(c)
}

// OptionsKey renders analysis options as the second half of a cache key.
func OptionsKey(opts analyze.Options) string {
	return fmt.Sprintf("%d:%d:%d", opts.SmallLimit, opts.Capacity, opts.Required)
}

// MakeKey creates a cache key from a transcript digest and options key.
// Format: <digest>\x00<options>
func MakeKey(digest, optsKey string) []byte {
	return []byte(digest + string(KeySeparator) + optsKey)
}

// MakeKeyPrefix returns the prefix for all keys of a digest.
func MakeKeyPrefix(digest string) []byte {
	if digest == "" {
		return nil
	}
	return []byte(digest + string(KeySeparator))
}
