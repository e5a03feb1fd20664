package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const debounce = 30 * time.Millisecond

type changes struct {
	mu    sync.Mutex
	paths []string
}

func (c *changes) add(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, p)
}

func (c *changes) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func TestWriteBurstTriggersOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drawing.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	fw, err := NewFileWatcher(debounce, nil)
	require.NoError(t, err)
	defer fw.Close()

	var got changes
	require.NoError(t, fw.Watch([]string{path}, got.add))
	fw.Start()

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	}

	assert.Eventually(t, func() bool { return got.count() == 1 }, 2*time.Second, debounce/3)
	time.Sleep(3 * debounce)
	assert.Equal(t, 1, got.count())

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, got.paths[0])
}

func TestOtherFilesInDirectoryAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drawing.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	fw, err := NewFileWatcher(debounce, nil)
	require.NoError(t, err)
	defer fw.Close()

	var got changes
	require.NoError(t, fw.Watch([]string{path}, got.add))
	fw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(4 * debounce)
	assert.Zero(t, got.count())
}

func TestRemoveAllStopsCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drawing.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	fw, err := NewFileWatcher(debounce, nil)
	require.NoError(t, err)
	defer fw.Close()

	var got changes
	require.NoError(t, fw.Watch([]string{path}, got.add))
	fw.Start()
	require.NoError(t, fw.RemoveAll())

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	time.Sleep(4 * debounce)
	assert.Zero(t, got.count())
}
