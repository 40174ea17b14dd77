package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StoreMemory, cfg.GraphStore)
	assert.Equal(t, 100, cfg.Traversal.MaxDepth)
	assert.Equal(t, 100000, cfg.Traversal.MaxVisited)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRAVERSAL_MAX_DEPTH", "5")
	t.Setenv("TRAVERSAL_MAX_VISITED", "250")
	t.Setenv("GRAPH_STORE", StoreDynamoDB)
	t.Setenv("TABLE_NAME", "graphnav-test")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Traversal.MaxDepth)
	assert.Equal(t, 250, cfg.Traversal.MaxVisited)
	assert.Equal(t, StoreDynamoDB, cfg.GraphStore)
}

func TestLoadConfig_InvalidBoundsRejected(t *testing.T) {
	t.Setenv("TRAVERSAL_MAX_DEPTH", "-1")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_UnknownStoreRejected(t *testing.T) {
	t.Setenv("GRAPH_STORE", "redis")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphnav.yaml")
	content := []byte("traversal:\n  max_depth: 12\n  max_visited: 3400\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Traversal.MaxDepth)
	assert.Equal(t, 3400, cfg.Traversal.MaxVisited)
}

func TestDynamicTraversal_UpdateAndSnapshot(t *testing.T) {
	dynamic := NewDynamicTraversal(TraversalConfig{MaxDepth: 100, MaxVisited: 1000})

	var notified TraversalConfig
	dynamic.OnChange(func(next TraversalConfig) { notified = next })

	applied := dynamic.Update(TraversalConfig{MaxDepth: 10, MaxVisited: 50})

	assert.True(t, applied)
	assert.Equal(t, TraversalConfig{MaxDepth: 10, MaxVisited: 50}, dynamic.Snapshot())
	assert.Equal(t, TraversalConfig{MaxDepth: 10, MaxVisited: 50}, notified)
}

func TestDynamicTraversal_RejectsInvalidBounds(t *testing.T) {
	initial := TraversalConfig{MaxDepth: 100, MaxVisited: 1000}
	dynamic := NewDynamicTraversal(initial)

	applied := dynamic.Update(TraversalConfig{MaxDepth: 0, MaxVisited: 50})

	assert.False(t, applied)
	assert.Equal(t, initial, dynamic.Snapshot())
}
