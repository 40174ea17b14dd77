package traversal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphnav-backend/domain/graph"
	pkgerrors "graphnav-backend/pkg/errors"
)

// fakeStore combines node and edge lookups over fixed maps.
type fakeStore struct {
	stubNodes
	stubEdges
}

func newFakeStore(edges map[int64][]int64) *fakeStore {
	store := &fakeStore{
		stubNodes: stubNodes{nodes: make(map[int64]*graph.Node)},
		stubEdges: stubEdges{targets: edges},
	}
	seen := make(map[int64]struct{})
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		store.stubNodes.nodes[id] = testNode(id, fmt.Sprintf("node-%d", id))
	}
	for source, targets := range edges {
		add(source)
		for _, target := range targets {
			add(target)
		}
	}
	return store
}

func newTestService(store *fakeStore, bounds Bounds) *Service {
	logger := zap.NewNop()
	provider := func() Bounds { return bounds }
	engine := NewEngine(&store.stubEdges, provider, logger)
	assembler := NewAssembler(&store.stubNodes, logger)
	return NewService(&store.stubNodes, engine, assembler, nil, logger)
}

func TestService_GetConnected_ReferenceGraph(t *testing.T) {
	store := newFakeStore(diamondGraph())
	service := newTestService(store, defaultBounds())

	result, err := service.GetConnected(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.SourceNodeID)
	assert.Equal(t, 10, result.TotalConnected)
	assert.False(t, result.Truncated)

	wantIDs := []int64{2, 3, 4, 5, 6, 7, 9, 10, 11, 14}
	wantDepths := []int{1, 1, 1, 2, 2, 2, 2, 2, 3, 3}
	require.Len(t, result.ConnectedNodes, 10)
	for i, connected := range result.ConnectedNodes {
		assert.Equal(t, wantIDs[i], connected.ID)
		assert.Equal(t, wantDepths[i], connected.Depth)
		assert.Equal(t, fmt.Sprintf("node-%d", wantIDs[i]), connected.Name)
	}
}

func TestService_GetConnected_LeafNode(t *testing.T) {
	store := newFakeStore(diamondGraph())
	service := newTestService(store, defaultBounds())

	result, err := service.GetConnected(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.SourceNodeID)
	assert.NotNil(t, result.ConnectedNodes)
	assert.Empty(t, result.ConnectedNodes)
	assert.Equal(t, 0, result.TotalConnected)
	assert.False(t, result.Truncated)
}

func TestService_GetConnected_UnknownSource(t *testing.T) {
	store := newFakeStore(diamondGraph())
	service := newTestService(store, defaultBounds())

	result, err := service.GetConnected(context.Background(), 999)

	assert.Nil(t, result)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestService_GetConnected_TruncatedFlagSurfaces(t *testing.T) {
	store := newFakeStore(map[int64][]int64{
		1: {2},
		2: {3},
		3: {4},
	})
	service := newTestService(store, Bounds{MaxDepth: 1, MaxVisited: DefaultMaxVisited})

	result, err := service.GetConnected(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 1, result.TotalConnected)
}

func TestService_GetConnected_StoreFailureIsUnavailable(t *testing.T) {
	store := newFakeStore(diamondGraph())
	store.stubNodes.err = errors.New("dynamodb throttled")
	service := newTestService(store, defaultBounds())

	result, err := service.GetConnected(context.Background(), 1)

	assert.Nil(t, result)
	// A broken store must not masquerade as not-found.
	assert.False(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestService_GetConnected_EdgeLookupFailureIsUnavailable(t *testing.T) {
	store := newFakeStore(diamondGraph())
	store.stubEdges.err = errors.New("connection refused")
	service := newTestService(store, defaultBounds())

	result, err := service.GetConnected(context.Background(), 1)

	assert.Nil(t, result)
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestService_GetConnected_CancellationPropagates(t *testing.T) {
	store := newFakeStore(diamondGraph())
	service := newTestService(store, defaultBounds())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.GetConnected(ctx, 1)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pkgerrors.GetAppError(err))
}
