package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/wayfind/internal/extract"
	"github.com/mvp-joe/wayfind/internal/grammar"
)

// Test Plan for snapshot:
// - Index walks a tree, stores symbols, and reports file/symbol counts
// - Skip dirs, dot dirs, ignore globs, and unsupported files are excluded
// - Progress fires once per indexed file
// - Reader.Latest returns the newest snapshot, nil on an empty database
// - Lookup matches names exactly with an optional kind filter
// - Search matches substrings and honors the limit

// newSnapshotTree writes a small mixed-language source tree.
func newSnapshotTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"app.py":              "def handle(req):\n    return req\n\nVERSION = 1\n",
		"lib/util.js":         "export function handleEvent(e) {}\n",
		"lib/notes.md":        "# not source\n",
		"lib/skipme_gen.py":   "def generated():\n    pass\n",
		"node_modules/dep.js": "function vendored() {}\n",
		".hidden/secret.py":   "def hidden():\n    pass\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	w, err := NewWriter(dbPath, grammar.NewRegistry(nil), Options{
		SkipDirs:    []string{"node_modules"},
		IgnoreGlobs: []string{"*_gen.py"},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, dbPath
}

func TestWriter_IndexWalksTree(t *testing.T) {
	t.Parallel()

	w, _ := newTestWriter(t)
	var visited []string
	w.Progress = func(path string) { visited = append(visited, filepath.Base(path)) }

	id, files, symbols, err := w.Index(newSnapshotTree(t))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 2, files, "only app.py and lib/util.js qualify")
	assert.Equal(t, 3, symbols)
	assert.ElementsMatch(t, []string{"app.py", "util.js"}, visited)
}

func TestReader_LatestAndLookup(t *testing.T) {
	t.Parallel()

	w, dbPath := newTestWriter(t)
	root := newSnapshotTree(t)
	id, _, _, err := w.Index(root)
	require.NoError(t, err)

	r, err := NewReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	info, err := r.Latest()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, root, info.RootPath)
	assert.Equal(t, 2, info.FilesIndexed)
	assert.Equal(t, 3, info.SymbolCount)

	records, err := r.Lookup(id, "handle", "", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "app.py", records[0].Path)
	assert.Equal(t, "python", records[0].Language)
	assert.Equal(t, extract.KindFunction, records[0].Kind)
	assert.Equal(t, 0, records[0].StartLine)

	records, err = r.Lookup(id, "handle", extract.KindClass, 0)
	require.NoError(t, err)
	assert.Empty(t, records, "kind filter excludes non-matching rows")

	records, err = r.Lookup(id, "handleEvent", "", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, filepath.Join("lib", "util.js"), records[0].Path)
	assert.True(t, records[0].Exported)
}

func TestReader_Search(t *testing.T) {
	t.Parallel()

	w, dbPath := newTestWriter(t)
	id, _, _, err := w.Index(newSnapshotTree(t))
	require.NoError(t, err)

	r, err := NewReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	records, err := r.Search(id, "handle", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "handle", records[0].Name, "name order puts the shorter match first")
	assert.Equal(t, "handleEvent", records[1].Name)

	records, err = r.Search(id, "handle", 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = r.Search(id, "zzqx", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReader_LatestEmptyDatabase(t *testing.T) {
	t.Parallel()

	_, dbPath := newTestWriter(t)

	r, err := NewReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	info, err := r.Latest()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestReader_LatestPicksNewestRun(t *testing.T) {
	t.Parallel()

	w, dbPath := newTestWriter(t)
	root := newSnapshotTree(t)
	_, _, _, err := w.Index(root)
	require.NoError(t, err)
	second, _, _, err := w.Index(root)
	require.NoError(t, err)

	r, err := NewReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	info, err := r.Latest()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, second, info.ID)
}
