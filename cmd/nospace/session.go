package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/cache"
	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/history"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
)

var logger = logging.Get("cli")

// stdinSource names a transcript read from standard input.
const stdinSource = "-"

// session holds what one command needs to analyze transcripts: the
// options and, when enabled, the cache and history.
type session struct {
	opts    analyze.Options
	cache   *cache.Cache
	history *history.History
}

// sessionOptions switches off the optional stores.
type sessionOptions struct {
	noCache   bool
	noHistory bool
}

// openSession opens the stores enabled by c. A cache that cannot be opened,
// for example because another process holds it, is skipped with a warning.
func openSession(c *config.Config, so sessionOptions) (*session, error) {
	opts, err := c.AnalyzeOptions()
	if err != nil {
		return nil, err
	}
	s := &session{opts: opts}

	if c.Cache.Enabled && !so.noCache {
		ch, err := cache.Open(c.CachePath())
		if err != nil {
			logger.Warn("cache unavailable", "path", c.CachePath(), "error", err)
			printVerbose("Cache unavailable: %v", err)
		} else {
			s.cache = ch
		}
	}

	if c.History.Enabled && !so.noHistory {
		h, err := history.New(c.HistoryPath())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize history: %w", err)
		}
		s.history = h
	}
	return s, nil
}

// sessionFromFlags opens a session honoring --no-cache and --no-history.
func sessionFromFlags() (*session, error) {
	return openSession(cfg, sessionOptions{
		noCache:   v.GetBool("no_cache"),
		noHistory: v.GetBool("no_history"),
	})
}

// Close closes the cache, if open.
func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Close()
	s.cache = nil
	return err
}

// analyze answers both queries for a transcript. Unless needTree is set, a
// cached result for the same content and options is returned without
// parsing. Cache and history failures are logged, not returned.
func (s *session) analyze(ctx context.Context, source string, data []byte, needTree bool) (*analyze.Result, error) {
	digest, err := cache.Digest(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var r *analyze.Result
	if s.cache != nil && !needTree {
		cached, err := s.cache.Lookup(digest, s.opts)
		switch {
		case err == nil:
			cached.Source = source
			r = cached
			printVerbose("Cache hit for %s (%s)", source, digest)
		case !errors.Is(err, cache.ErrNotFound):
			logger.Warn("cache lookup failed", "digest", digest, "error", err)
		}
	}

	if r == nil {
		r, err = analyze.Run(ctx, source, transcript.NewLineReader(bytes.NewReader(data)), s.opts)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Save(digest, r); err != nil {
				logger.Warn("cache save failed", "digest", digest, "error", err)
			}
		}
	}

	if s.history != nil {
		if _, err := s.history.LogAnalysis(digest, r); err != nil {
			logger.Warn("history write failed", "error", err)
		}
	}
	return r, nil
}

// analyzeArgs analyzes the transcript named by args. With neither cache nor
// history open no digest is needed, so a named file is streamed line by
// line instead of read whole.
func (s *session) analyzeArgs(ctx context.Context, args []string, stdin io.Reader, needTree bool) (*analyze.Result, error) {
	if s.cache != nil || s.history != nil || len(args) == 0 || args[0] == stdinSource {
		source, data, err := readTranscript(args, stdin)
		if err != nil {
			return nil, err
		}
		return s.analyze(ctx, source, data, needTree)
	}

	path, err := config.ExpandPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to expand path: %w", err)
	}
	src, err := transcript.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("transcript does not exist: %s", path)
		}
		return nil, err
	}
	defer src.Close()

	printVerbose("Streaming %s", path)
	return analyze.Run(ctx, path, src, s.opts)
}

// readTranscript reads the transcript named by args: a file path, or stdin
// when args is empty or "-".
func readTranscript(args []string, stdin io.Reader) (source string, data []byte, err error) {
	if len(args) == 0 || args[0] == stdinSource {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("reading stdin: %w", err)
		}
		return stdinSource, data, nil
	}

	path, err := config.ExpandPath(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand path: %w", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("transcript does not exist: %s", path)
		}
		return "", nil, fmt.Errorf("reading transcript: %w", err)
	}
	return path, data, nil
}
