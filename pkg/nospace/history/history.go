package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
)

var logger = logging.Get("history")

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("history entry not found")

// History manages history entries on the filesystem.
type History struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a History rooted at dir. The directory is created on the
// first write.
func New(dir string) (*History, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &History{dir: dir, now: time.Now}, nil
}

// Dir returns the history directory.
func (h *History) Dir() string {
	return h.dir
}

// LogAnalysis records an analysis result and returns the created entry.
func (h *History) LogAnalysis(digest string, r *analyze.Result) (*Entry, error) {
	return h.log(&Entry{
		Operation: OpAnalyze,
		Source:    r.Source,
		Digest:    digest,
		Options:   r.Options(),
		Summary:   SummaryOf(r),
	})
}

// LogRecord records that a transcript was written for a real directory.
func (h *History) LogRecord(root string, dirs, files int, total uint64) (*Entry, error) {
	return h.log(&Entry{
		Operation: OpRecord,
		Source:    root,
		Summary:   Summary{TotalSize: total, Dirs: dirs, Files: files},
	})
}

func (h *History) log(entry *Entry) (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry.ID = uuid.New().String()
	entry.Timestamp = h.now().UTC()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := h.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write history entry: %w", err)
	}

	logger.Debug("history entry written", "id", entry.ID, "operation", entry.Operation)
	return entry, nil
}

// writeEntry writes an entry atomically using a temp file and rename.
func (h *History) writeEntry(entry *Entry) error {
	filePath := filepath.Join(h.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns entries newest first. If limit is 0 or negative, all
// entries are returned.
func (h *History) List(limit int) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.readAll()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves an entry by ID or by a unique ID prefix.
func (h *History) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous entry ID prefix: %s", id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Clean removes entries older than retentionDays and returns how many
// were removed. Files that cannot be parsed are left alone.
func (h *History) Clean(retentionDays int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().AddDate(0, 0, -retentionDays)

	entries, err := h.readAll()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(h.dir, entry.ID+".json")); err != nil {
			logger.Warn("failed to remove history entry", "id", entry.ID, "error", err)
			continue
		}
		removed++
	}

	logger.Info("history cleaned", "removed", removed, "retention_days", retentionDays)
	return removed, nil
}

// readAll parses every entry file, skipping files that cannot be parsed.
func (h *History) readAll() ([]Entry, error) {
	files, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := h.readEntryFile(f.Name())
		if err != nil {
			logger.Debug("skipping unreadable history file", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// readEntryFile reads and parses an entry from a JSON file.
func (h *History) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}
