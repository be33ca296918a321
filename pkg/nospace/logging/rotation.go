package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes that triggers rotation.
	// Zero uses the default of 10MB.
	MaxSize int64

	// MaxAge is the number of days to keep rotated files. Zero keeps them.
	MaxAge int

	// MaxBackups is the number of rotated files to keep. Zero keeps all.
	MaxBackups int
}

// DefaultRotationConfig returns the rotation defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
	}
}

// RotatingWriter is an io.WriteCloser that renames the log file once it
// grows past MaxSize and prunes old rotated files.
type RotatingWriter struct {
	path string
	cfg  RotationConfig
	mu   sync.Mutex
	file *os.File
	size int64
	now  func() time.Time
}

// NewRotatingWriter opens path for appending, creating parent directories.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, now: time.Now}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	w.cleanup()
	return w, nil
}

// Write appends p, rotating first if p would push the file past MaxSize.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.size > 0 && w.size+int64(len(p)) > w.cfg.MaxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close closes the log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) openFile() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	rotated := fmt.Sprintf("%s.%s%s", base, w.now().Format("2006-01-02-150405.000"), ext)
	if err := os.Rename(w.path, rotated); err != nil {
		return fmt.Errorf("renaming log file: %w", err)
	}

	if err := w.openFile(); err != nil {
		return err
	}
	w.cleanup()
	return nil
}

// cleanup removes rotated files beyond MaxBackups or older than MaxAge.
func (w *RotatingWriter) cleanup() {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var rotated []logFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rotated = append(rotated, logFile{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	// Newest first.
	slices.SortFunc(rotated, func(a, b logFile) int {
		return b.modTime.Compare(a.modTime)
	})

	maxAge := time.Duration(w.cfg.MaxAge) * 24 * time.Hour
	for i, lf := range rotated {
		expired := w.cfg.MaxAge > 0 && w.now().Sub(lf.modTime) > maxAge
		if (w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups) || expired {
			_ = os.Remove(lf.path)
		}
	}
}
