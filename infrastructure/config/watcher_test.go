package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherReloadsTraversalBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("traversal:\n  max_depth: 100\n  max_visited: 100000\n"), 0o644))

	dynamic := NewDynamicTraversal(TraversalConfig{MaxDepth: 100, MaxVisited: 100000})

	watcher, err := NewWatcher(path, dynamic, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("traversal:\n  max_depth: 5\n  max_visited: 250\n"), 0o644))

	require.Eventually(t, func() bool {
		snapshot := dynamic.Snapshot()
		return snapshot.MaxDepth == 5 && snapshot.MaxVisited == 250
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcherIgnoresInvalidBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("traversal:\n  max_depth: 10\n  max_visited: 100\n"), 0o644))

	dynamic := NewDynamicTraversal(TraversalConfig{MaxDepth: 10, MaxVisited: 100})

	watcher, err := NewWatcher(path, dynamic, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("traversal:\n  max_depth: -1\n  max_visited: 0\n"), 0o644))

	// Give the debounce window time to fire, then confirm nothing changed.
	time.Sleep(debounceWindow + 300*time.Millisecond)
	snapshot := dynamic.Snapshot()
	require.Equal(t, 10, snapshot.MaxDepth)
	require.Equal(t, 100, snapshot.MaxVisited)
}
