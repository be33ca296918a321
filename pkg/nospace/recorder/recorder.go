// Package recorder walks a real directory and writes the transcript a
// shell session exploring it with cd and ls would have produced, so the
// analyzer can be pointed at an actual filesystem.
package recorder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/bits"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
)

var logger = logging.Get("recorder")

// Options configures a recording.
type Options struct {
	// Root is the directory to record.
	Root string

	// Workers overrides the number of fastwalk workers. Zero uses the
	// fastwalk default.
	Workers int

	// SkipHidden skips entries whose names start with a dot.
	SkipHidden bool

	// Exclude holds glob patterns. An entry is skipped when a pattern
	// matches its name or its slash-separated path relative to Root.
	Exclude []string
}

// Stats describes a finished recording.
type Stats struct {
	Root      string `json:"root"`
	Dirs      int    `json:"dirs"`
	Files     int    `json:"files"`
	TotalSize uint64 `json:"total_size"`
	Skipped   int64  `json:"skipped"`
	Lines     int    `json:"lines"`
}

type dirRecord struct {
	files map[string]uint64
	dirs  []string
}

// Recorder walks a directory once and can then write its transcript.
type Recorder struct {
	opts Options
	root string

	exclude []glob.Glob

	mu   sync.Mutex
	dirs map[string]*dirRecord

	skipped atomic.Int64
}

// New returns a recorder for opts.Root.
func New(opts Options) (*Recorder, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	exclude, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		opts:    opts,
		root:    root,
		exclude: exclude,
		dirs:    map[string]*dirRecord{".": newDirRecord()},
	}, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// excluded reports whether an entry matches any exclude pattern.
func (r *Recorder) excluded(rel, name string) bool {
	for _, g := range r.exclude {
		if g.Match(name) || g.Match(rel) {
			return true
		}
	}
	return false
}

func newDirRecord() *dirRecord {
	return &dirRecord{files: make(map[string]uint64)}
}

// Root returns the absolute path being recorded.
func (r *Recorder) Root() string {
	return r.root
}

// Walk scans the directory tree with fastwalk. Entries that a transcript
// cannot represent are skipped: names containing whitespace, symlinks and
// special files.
func (r *Recorder) Walk(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: r.opts.Workers,
	}

	err := fastwalk.Walk(&conf, r.root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			logger.Warn("skipping unreadable entry", "path", path, "error", walkErr)
			r.skipped.Add(1)
			return nil
		}
		if path == r.root {
			return nil
		}

		name := d.Name()
		if !representable(name) || (r.opts.SkipHidden && strings.HasPrefix(name, ".")) {
			r.skipped.Add(1)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(r.root, filepath.Dir(path))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if r.excluded(childPath(rel, name), name) {
			r.skipped.Add(1)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			r.addDir(rel, name)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				r.skipped.Add(1)
				return nil //nolint:nilerr // unreadable files are skipped
			}
			r.addFile(rel, name, uint64(info.Size()))
		default:
			r.skipped.Add(1)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("walking %s: %w", r.root, err)
	}
	logger.Debug("walk complete", "root", r.root, "dirs", len(r.dirs), "skipped", r.skipped.Load())
	return nil
}

// representable reports whether a name can appear in a listing line.
func representable(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n/")
}

func (r *Recorder) addDir(parent, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(parent).dirs = append(r.record(parent).dirs, name)
	r.record(childPath(parent, name))
}

func (r *Recorder) addFile(parent, name string, size uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(parent).files[name] = size
}

// record returns the record for rel, creating it. Callers hold r.mu.
func (r *Recorder) record(rel string) *dirRecord {
	rec, ok := r.dirs[rel]
	if !ok {
		rec = newDirRecord()
		r.dirs[rel] = rec
	}
	return rec
}

func childPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return parent + "/" + name
}

type listing struct {
	name  string
	isDir bool
	size  uint64
}

// listingOf returns a directory's entries sorted by name.
func (rec *dirRecord) listingOf() []listing {
	out := make([]listing, 0, len(rec.files)+len(rec.dirs))
	for _, name := range rec.dirs {
		out = append(out, listing{name: name, isDir: true})
	}
	for name, size := range rec.files {
		out = append(out, listing{name: name, size: size})
	}
	slices.SortFunc(out, func(a, b listing) int {
		return strings.Compare(a.name, b.name)
	})
	return out
}

// WriteTo writes the transcript for the walked tree. Directories are
// entered in name order, each listed once, and left with cd .. so the
// session ends back at the root.
func (r *Recorder) WriteTo(w io.Writer) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{Root: r.root, Skipped: r.skipped.Load()}
	bw := bufio.NewWriter(w)
	emit := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
		stats.Lines++
	}

	type frame struct {
		rel     string
		subdirs []string
		next    int
	}

	var overflow bool

	enter := func(rel string) frame {
		rec := r.dirs[rel]
		stats.Dirs++
		emit("$ ls")

		f := frame{rel: rel}
		for _, e := range rec.listingOf() {
			if e.isDir {
				emit("dir %s", e.name)
				f.subdirs = append(f.subdirs, e.name)
				continue
			}
			emit("%d %s", e.size, e.name)
			stats.Files++
			total, carry := bits.Add64(stats.TotalSize, e.size, 0)
			overflow = overflow || carry != 0
			stats.TotalSize = total
		}
		return f
	}

	emit("$ cd /")
	stack := []frame{enter(".")}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.subdirs) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				emit("$ cd ..")
			}
			continue
		}

		name := top.subdirs[top.next]
		top.next++
		emit("$ cd %s", name)
		stack = append(stack, enter(childPath(top.rel, name)))
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("writing transcript: %w", err)
	}
	if overflow {
		return stats, fmt.Errorf("recording %s: %w", r.root, transcript.ErrSizeOverflow)
	}
	return stats, nil
}

// Record walks opts.Root and writes its transcript to w.
func Record(ctx context.Context, opts Options, w io.Writer) (Stats, error) {
	r, err := New(opts)
	if err != nil {
		return Stats{}, err
	}
	if err := r.Walk(ctx); err != nil {
		return Stats{}, err
	}
	return r.WriteTo(w)
}

// ErrCapacityUnsupported is returned by Capacity on platforms without statfs.
var ErrCapacityUnsupported = errors.New("filesystem capacity is not available on this platform")
