package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for DocumentWatcher:
// - A write to a tracked file is delivered after the quiet period
// - Rapid writes to multiple tracked files coalesce into one batch
// - Untracked files in a watched directory never reach the callback
// - Untrack drops pending changes for the path
// - Stop is safe to call twice, and before Start

func newTestWatcher(t *testing.T) (*DocumentWatcher, chan []string) {
	t.Helper()

	w, err := New(nil)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	t.Cleanup(func() { w.Stop() })

	batches := make(chan []string, 4)
	w.Start(context.Background(), func(paths []string) { batches <- paths })
	return w, batches
}

func waitForBatch(t *testing.T, batches chan []string) []string {
	t.Helper()
	select {
	case batch := <-batches:
		return batch
	case <-time.After(3 * time.Second):
		t.Fatal("no batch delivered")
		return nil
	}
}

func TestWatcher_DeliversTrackedChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	w, batches := newTestWatcher(t)
	w.Track(path)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0o644))
	assert.Equal(t, []string{path}, waitForBatch(t, batches))
}

func TestWatcher_CoalescesBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(a, []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("y = 1\n"), 0o644))

	w, batches := newTestWatcher(t)
	w.Track(a)
	w.Track(b)

	require.NoError(t, os.WriteFile(a, []byte("x = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("y = 2\n"), 0o644))

	seen := map[string]bool{}
	for len(seen) < 2 {
		for _, path := range waitForBatch(t, batches) {
			seen[path] = true
		}
	}
	assert.True(t, seen[a])
	assert.True(t, seen[b])
}

func TestWatcher_IgnoresUntrackedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "tracked.py")
	other := filepath.Join(dir, "other.py")
	require.NoError(t, os.WriteFile(tracked, []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("y = 1\n"), 0o644))

	w, batches := newTestWatcher(t)
	w.Track(tracked)

	require.NoError(t, os.WriteFile(other, []byte("y = 2\n"), 0o644))
	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch: %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_UntrackDropsPending(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	w, batches := newTestWatcher(t)
	w.Track(path)
	w.Untrack(path)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0o644))
	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch: %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	t.Parallel()

	w, err := New(nil)
	require.NoError(t, err)
	w.Start(context.Background(), func([]string) {})

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	t.Parallel()

	w, err := New(nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}
