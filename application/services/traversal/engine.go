package traversal

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"graphnav-backend/application/ports"
)

// Default traversal bounds. Both are configurable; hitting either one
// truncates the result instead of failing the request.
const (
	DefaultMaxDepth   = 100
	DefaultMaxVisited = 100_000
)

// maxConcurrentLookups caps the edge-lookup fan-out within a single BFS
// level so a wide frontier cannot exhaust the store's connection pool.
const maxConcurrentLookups = 8

// Bounds limits a single traversal.
type Bounds struct {
	// MaxDepth is the deepest BFS level that is still recorded.
	MaxDepth int
	// MaxVisited is the maximum number of distinct reachable nodes recorded.
	MaxVisited int
}

// BoundsProvider yields the bounds for the next traversal. Indirection
// through a function lets config hot reloads take effect without restarting.
type BoundsProvider func() Bounds

// Reachable is one traversal result: a node id and the length of the
// shortest directed path from the source to it.
type Reachable struct {
	NodeID int64
	Depth  int
}

// Engine computes the set of nodes reachable from a source node using a
// level-synchronous breadth-first traversal over an edge-lookup capability.
//
// The engine is stateless between calls and never mutates the graph; any
// number of traversals may run concurrently against the same store.
type Engine struct {
	edges  ports.EdgeReader
	bounds BoundsProvider
	logger *zap.Logger
}

// NewEngine creates a traversal engine.
func NewEngine(edges ports.EdgeReader, bounds BoundsProvider, logger *zap.Logger) *Engine {
	if bounds == nil {
		bounds = func() Bounds {
			return Bounds{MaxDepth: DefaultMaxDepth, MaxVisited: DefaultMaxVisited}
		}
	}
	return &Engine{
		edges:  edges,
		bounds: bounds,
		logger: logger,
	}
}

// Traverse returns every node reachable from sourceID with its minimum
// depth, sorted by depth then node id. The source itself is never included.
//
// The caller must have validated that sourceID exists. A source with no
// outgoing edges yields an empty slice, not an error. When a depth or
// visited-count bound is hit the partial result is returned with
// truncated=true. Store failures and context cancellation abort the whole
// traversal; no partial results are returned in those cases.
func (e *Engine) Traverse(ctx context.Context, sourceID int64) ([]Reachable, bool, error) {
	bounds := e.bounds()
	if bounds.MaxDepth <= 0 {
		bounds.MaxDepth = DefaultMaxDepth
	}
	if bounds.MaxVisited <= 0 {
		bounds.MaxVisited = DefaultMaxVisited
	}

	// seen marks every node ever enqueued, including the source, so cycles
	// and diamonds are expanded at most once. First visit is minimum depth
	// because BFS discovers nodes in non-decreasing depth order.
	seen := map[int64]struct{}{sourceID: {}}
	records := make([]Reachable, 0)
	truncated := false

	direct, err := e.edges.GetOutgoingTargets(ctx, sourceID)
	if err != nil {
		return nil, false, err
	}
	frontier := dedupeUnseen(direct, seen)

	span := trace.SpanFromContext(ctx)

	for depth := 1; len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if depth > bounds.MaxDepth {
			truncated = true
			break
		}
		if len(records)+len(frontier) > bounds.MaxVisited {
			frontier = frontier[:bounds.MaxVisited-len(records)]
			truncated = true
		}

		for _, id := range frontier {
			records = append(records, Reachable{NodeID: id, Depth: depth})
		}
		span.AddEvent("traversal.level", trace.WithAttributes(
			attribute.Int("graph.depth", depth),
			attribute.Int("graph.frontier_size", len(frontier)),
			attribute.Int("graph.visited", len(records)),
		))
		if truncated {
			break
		}

		next, err := e.expand(ctx, frontier)
		if err != nil {
			return nil, false, err
		}
		frontier = dedupeUnseen(next, seen)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Depth != records[j].Depth {
			return records[i].Depth < records[j].Depth
		}
		return records[i].NodeID < records[j].NodeID
	})

	if truncated {
		e.logger.Warn("Traversal truncated by bounds",
			zap.Int64("sourceID", sourceID),
			zap.Int("visited", len(records)),
			zap.Int("maxDepth", bounds.MaxDepth),
			zap.Int("maxVisited", bounds.MaxVisited),
		)
	}

	return records, truncated, nil
}

// expand fetches the out-edges of every frontier node. Lookups within one
// level are independent, so they run concurrently; results are merged in
// frontier order to keep the traversal deterministic.
func (e *Engine) expand(ctx context.Context, frontier []int64) ([]int64, error) {
	perNode := make([][]int64, len(frontier))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, id := range frontier {
		g.Go(func() error {
			targets, err := e.edges.GetOutgoingTargets(gctx, id)
			if err != nil {
				return err
			}
			perNode[i] = targets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var next []int64
	for _, targets := range perNode {
		next = append(next, targets...)
	}
	return next, nil
}

// dedupeUnseen filters candidate ids down to those not yet enqueued,
// marking them as seen. Order is normalized so concurrent expansion cannot
// influence the level ordering.
func dedupeUnseen(candidates []int64, seen map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
