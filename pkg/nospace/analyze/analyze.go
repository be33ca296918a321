// Package analyze runs a transcript through the parser and tree builder and
// answers the two space questions: how much the small directories add up
// to, and which single directory to delete to free enough space.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
	"github.com/jamesainslie/nospace/pkg/nospace/tree"
)

var logger = logging.Get("analyze")

// Defaults for Options.
const (
	DefaultSmallLimit uint64 = 100000
	DefaultCapacity   uint64 = 70000000
	DefaultRequired   uint64 = 30000000
)

// ErrInvalidOptions is returned when the analysis options are inconsistent.
var ErrInvalidOptions = errors.New("invalid analysis options")

// Options controls the two queries.
type Options struct {
	// SmallLimit is the inclusive upper bound for a "small" directory.
	SmallLimit uint64 `json:"small_limit" yaml:"small_limit"`

	// Capacity is the total disk capacity.
	Capacity uint64 `json:"capacity" yaml:"capacity"`

	// Required is the free space needed.
	Required uint64 `json:"required" yaml:"required"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SmallLimit: DefaultSmallLimit,
		Capacity:   DefaultCapacity,
		Required:   DefaultRequired,
	}
}

// Validate checks that the required free space fits on the disk.
func (o Options) Validate() error {
	if o.Capacity == 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidOptions)
	}
	if o.Required > o.Capacity {
		return fmt.Errorf("%w: required space %d exceeds capacity %d", ErrInvalidOptions, o.Required, o.Capacity)
	}
	return nil
}

// DirSummary is a directory path and its computed size.
type DirSummary struct {
	Path string `json:"path" yaml:"path"`
	Size uint64 `json:"size" yaml:"size"`
}

// Result is the outcome of one analysis.
type Result struct {
	// Source names the transcript, e.g. a file path or "-" for stdin.
	Source string `json:"source" yaml:"source"`

	// Tree is the reconstructed tree. It is nil for results loaded from
	// the cache or history.
	Tree *tree.Tree `json:"-" yaml:"-"`

	// TotalSize is the computed size of the root.
	TotalSize uint64 `json:"total_size" yaml:"total_size"`

	// Dirs and Files count the nodes in the tree, root included.
	Dirs  int `json:"dirs" yaml:"dirs"`
	Files int `json:"files" yaml:"files"`

	// SmallLimit, SmallDirs and SmallSum answer the small directory query.
	SmallLimit uint64       `json:"small_limit" yaml:"small_limit"`
	SmallDirs  []DirSummary `json:"small_dirs" yaml:"small_dirs"`
	SmallSum   uint64       `json:"small_sum" yaml:"small_sum"`

	// Capacity, Required, Unused, NeedToFree and Candidate answer the
	// deletion query. Candidate is nil when nothing needs to be freed or
	// no directory is large enough.
	Capacity   uint64      `json:"capacity" yaml:"capacity"`
	Required   uint64      `json:"required" yaml:"required"`
	Unused     uint64      `json:"unused" yaml:"unused"`
	NeedToFree uint64      `json:"need_to_free" yaml:"need_to_free"`
	Candidate  *DirSummary `json:"candidate,omitempty" yaml:"candidate,omitempty"`

	// Elapsed is how long parsing, building and querying took.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Cached reports whether the result was served from the cache.
	Cached bool `json:"cached" yaml:"cached"`
}

// Options returns the options the result was computed with.
func (r *Result) Options() Options {
	return Options{SmallLimit: r.SmallLimit, Capacity: r.Capacity, Required: r.Required}
}

// Run builds a tree from src and summarizes it. ctx is checked between
// lines.
func Run(ctx context.Context, source string, src transcript.LineSource, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := tree.BuildContext(ctx, src)
	if err != nil {
		return nil, err
	}

	r := Summarize(t, opts)
	r.Source = source
	r.Elapsed = time.Since(start)

	logger.Info("analysis complete",
		"source", source,
		"total", r.TotalSize,
		"dirs", r.Dirs,
		"small_sum", r.SmallSum,
		"need_to_free", r.NeedToFree,
		"elapsed", r.Elapsed)
	return r, nil
}

// Summarize answers both queries over an aggregated tree.
func Summarize(t *tree.Tree, opts Options) *Result {
	r := &Result{
		Tree:       t,
		TotalSize:  t.TotalSize(),
		SmallLimit: opts.SmallLimit,
		SmallDirs:  []DirSummary{},
		Capacity:   opts.Capacity,
		Required:   opts.Required,
	}
	r.Dirs, r.Files = t.Counts()

	for e := range t.AtMost(opts.SmallLimit) {
		r.SmallDirs = append(r.SmallDirs, DirSummary{Path: e.Path, Size: e.Size()})
		r.SmallSum += e.Size()
	}

	r.Unused = saturatingSub(opts.Capacity, r.TotalSize)
	r.NeedToFree = saturatingSub(opts.Required, r.Unused)
	if r.NeedToFree == 0 {
		return r
	}

	if e, ok := t.SmallestAtLeast(r.NeedToFree); ok {
		r.Candidate = &DirSummary{Path: e.Path, Size: e.Size()}
	} else {
		logger.Warn("no directory frees enough space", "need_to_free", r.NeedToFree, "total", r.TotalSize)
	}
	return r
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
