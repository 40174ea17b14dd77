package config

import (
	"sync"
)

// DynamicTraversal holds the traversal bounds behind a mutex so a config
// reload can swap them while traversals are in flight. Each traversal takes
// a snapshot at its start; a reload affects the next call, never a running
// one.
type DynamicTraversal struct {
	mu        sync.RWMutex
	current   TraversalConfig
	callbacks []func(TraversalConfig)
}

// NewDynamicTraversal creates a dynamic view over the initial bounds.
func NewDynamicTraversal(initial TraversalConfig) *DynamicTraversal {
	return &DynamicTraversal{current: initial}
}

// Snapshot returns the bounds as of now.
func (d *DynamicTraversal) Snapshot() TraversalConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Update replaces the bounds and notifies subscribers. Invalid bounds are
// ignored so a bad reload cannot disable the safety limits.
func (d *DynamicTraversal) Update(next TraversalConfig) bool {
	if next.MaxDepth <= 0 || next.MaxVisited <= 0 {
		return false
	}

	d.mu.Lock()
	if next == d.current {
		d.mu.Unlock()
		return false
	}
	d.current = next
	callbacks := make([]func(TraversalConfig), len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.Unlock()

	for _, callback := range callbacks {
		callback(next)
	}
	return true
}

// OnChange registers a callback invoked after every applied update.
func (d *DynamicTraversal) OnChange(callback func(TraversalConfig)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = append(d.callbacks, callback)
}
