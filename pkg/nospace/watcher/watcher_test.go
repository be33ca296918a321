package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReportsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "transcript.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(target, []byte("$ cd /\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	w, err := New(50 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Add(target))

	var mu sync.Mutex
	var changes []string

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(path string) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, path)
		})
	}()

	for _, line := range []string{"$ ls\n", "1 f\n", "2 g\n"} {
		f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0)
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(other, []byte("y"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) > 0
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	abs, _ := filepath.Abs(target)
	require.NotEmpty(t, changes)
	for _, path := range changes {
		assert.Equal(t, abs, path)
	}
}

func TestWatcherAddErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(time.Millisecond)
	require.NoError(t, err)

	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing.txt")))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "t.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.ErrorIs(t, w.Add(path), ErrClosed)
}

func TestWatcherRunStopsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(time.Millisecond)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), func(string) {})
	}()

	require.NoError(t, w.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
