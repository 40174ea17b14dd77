package traversal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// stubEdges is a map-backed edge lookup.
type stubEdges struct {
	targets map[int64][]int64
	err     error
}

func (s *stubEdges) GetOutgoingTargets(ctx context.Context, sourceID int64) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.targets[sourceID], nil
}

func newTestEngine(edges *stubEdges, bounds Bounds) *Engine {
	return NewEngine(edges, func() Bounds { return bounds }, zap.NewNop())
}

func defaultBounds() Bounds {
	return Bounds{MaxDepth: DefaultMaxDepth, MaxVisited: DefaultMaxVisited}
}

// diamondGraph is the reference graph: diamonds via 5->14 cross-link,
// several branches, no cycles.
//
//	1 -> 2, 3, 4
//	2 -> 5, 6
//	3 -> 7
//	4 -> 9, 10
//	5 -> 11, 14
func diamondGraph() map[int64][]int64 {
	return map[int64][]int64{
		1: {2, 3, 4},
		2: {5, 6},
		3: {7},
		4: {9, 10},
		5: {11, 14},
	}
}

func TestEngine_Traverse_ReportsMinimumDepths(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: diamondGraph()}, defaultBounds())

	records, truncated, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, []Reachable{
		{NodeID: 2, Depth: 1},
		{NodeID: 3, Depth: 1},
		{NodeID: 4, Depth: 1},
		{NodeID: 5, Depth: 2},
		{NodeID: 6, Depth: 2},
		{NodeID: 7, Depth: 2},
		{NodeID: 9, Depth: 2},
		{NodeID: 10, Depth: 2},
		{NodeID: 11, Depth: 3},
		{NodeID: 14, Depth: 3},
	}, records)
}

func TestEngine_Traverse_CycleTerminates(t *testing.T) {
	// 6 -> 2 closes a cycle back to an already-visited node.
	targets := diamondGraph()
	targets[6] = []int64{2}
	engine := newTestEngine(&stubEdges{targets: targets}, defaultBounds())

	records, truncated, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, truncated)

	// Node 2 appears exactly once, at its minimum depth.
	occurrences := 0
	for _, r := range records {
		if r.NodeID == 2 {
			occurrences++
			assert.Equal(t, 1, r.Depth)
		}
	}
	assert.Equal(t, 1, occurrences)
	assert.Len(t, records, 10)
}

func TestEngine_Traverse_SourceNeverIncluded(t *testing.T) {
	// Cycle straight back to the source.
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {2},
		2: {1},
	}}, defaultBounds())

	records, _, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []Reachable{{NodeID: 2, Depth: 1}}, records)
}

func TestEngine_Traverse_SelfLoopIgnored(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {1, 2},
	}}, defaultBounds())

	records, _, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []Reachable{{NodeID: 2, Depth: 1}}, records)
}

func TestEngine_Traverse_LeafNode(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: diamondGraph()}, defaultBounds())

	records, truncated, err := engine.Traverse(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestEngine_Traverse_Deterministic(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: diamondGraph()}, defaultBounds())

	first, _, err := engine.Traverse(context.Background(), 1)
	require.NoError(t, err)
	second, _, err := engine.Traverse(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Traverse_DuplicateEdgesCollapse(t *testing.T) {
	// A multigraph lookup that did not deduplicate its targets.
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {2, 2, 3, 2},
		2: {3},
	}}, defaultBounds())

	records, _, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []Reachable{
		{NodeID: 2, Depth: 1},
		{NodeID: 3, Depth: 1},
	}, records)
}

func TestEngine_Traverse_DepthBoundTruncates(t *testing.T) {
	// Chain 1 -> 2 -> 3 -> 4 -> 5.
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {2},
		2: {3},
		3: {4},
		4: {5},
	}}, Bounds{MaxDepth: 2, MaxVisited: DefaultMaxVisited})

	records, truncated, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, []Reachable{
		{NodeID: 2, Depth: 1},
		{NodeID: 3, Depth: 2},
	}, records)
}

func TestEngine_Traverse_DepthBoundExactFitNotTruncated(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {2},
		2: {3},
	}}, Bounds{MaxDepth: 2, MaxVisited: DefaultMaxVisited})

	records, truncated, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, records, 2)
}

func TestEngine_Traverse_VisitedBoundTruncates(t *testing.T) {
	engine := newTestEngine(&stubEdges{targets: map[int64][]int64{
		1: {10, 11, 12, 13, 14},
	}}, Bounds{MaxDepth: DefaultMaxDepth, MaxVisited: 3})

	records, truncated, err := engine.Traverse(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, []Reachable{
		{NodeID: 10, Depth: 1},
		{NodeID: 11, Depth: 1},
		{NodeID: 12, Depth: 1},
	}, records)
}

func TestEngine_Traverse_LookupErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection reset")
	engine := newTestEngine(&stubEdges{err: storeErr}, defaultBounds())

	records, truncated, err := engine.Traverse(context.Background(), 1)

	assert.ErrorIs(t, err, storeErr)
	assert.False(t, truncated)
	assert.Nil(t, records)
}

func TestEngine_Traverse_RecordsLevelEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := provider.Tracer("test").Start(context.Background(), "traverse")

	engine := newTestEngine(&stubEdges{targets: diamondGraph()}, defaultBounds())
	_, _, err := engine.Traverse(ctx, 1)
	span.End()

	require.NoError(t, err)
	spans := recorder.Ended()
	require.Len(t, spans, 1)

	// One event per BFS level: depths 1, 2 and 3.
	levels := 0
	for _, event := range spans[0].Events() {
		if event.Name == "traversal.level" {
			levels++
		}
	}
	assert.Equal(t, 3, levels)
}

func TestEngine_Traverse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(&stubEdges{targets: diamondGraph()}, defaultBounds())

	records, _, err := engine.Traverse(ctx, 1)

	// Cancellation is all-or-nothing: no partial results.
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
}
