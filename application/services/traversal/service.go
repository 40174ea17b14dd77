package traversal

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	pkgerrors "graphnav-backend/pkg/errors"
)

var tracer = otel.Tracer("graphnav-backend/application/services/traversal")

// Metrics receives traversal outcomes for observability. The Prometheus
// collector satisfies this; tests use NopMetrics.
type Metrics interface {
	// TraversalCompleted records a finished traversal with the number of
	// nodes found, the deepest level reached, and whether a bound was hit.
	TraversalCompleted(visited, maxDepth int, truncated bool)

	// TraversalFailed records a traversal aborted by a store failure or
	// cancellation.
	TraversalFailed()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) TraversalCompleted(int, int, bool) {}
func (NopMetrics) TraversalFailed()                  {}

// ConnectedResult is the facade's response: everything reachable from the
// source node, with shortest depths.
type ConnectedResult struct {
	SourceNodeID   int64           `json:"source_node_id"`
	ConnectedNodes []ConnectedNode `json:"connected_nodes"`
	TotalConnected int             `json:"total_connected"`
	Truncated      bool            `json:"truncated,omitempty"`
}

// Service is the traversal facade: it validates the source node, runs the
// engine, assembles metadata, and owns the externally visible error
// contract. It is stateless and safe for concurrent use.
type Service struct {
	nodes     ports.NodeReader
	engine    *Engine
	assembler *Assembler
	metrics   Metrics
	logger    *zap.Logger
}

// NewService creates the traversal facade.
func NewService(nodes ports.NodeReader, engine *Engine, assembler *Assembler, metrics Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		nodes:     nodes,
		engine:    engine,
		assembler: assembler,
		metrics:   metrics,
		logger:    logger,
	}
}

// GetConnected returns every node reachable from sourceID.
//
// A missing source node yields a NOT_FOUND error; that is the only
// client-visible failure. A source with no reachable nodes is a success
// with an empty list. Store failures surface as UNAVAILABLE and are never
// masked as not-found. Context cancellation propagates unchanged.
func (s *Service) GetConnected(ctx context.Context, sourceID int64) (*ConnectedResult, error) {
	ctx, span := tracer.Start(ctx, "traversal.GetConnected",
		trace.WithAttributes(attribute.Int64("graph.source_node_id", sourceID)),
	)
	defer span.End()

	exists, err := s.nodes.NodeExists(ctx, sourceID)
	if err != nil {
		s.metrics.TraversalFailed()
		return nil, s.storeError(err, "failed to check source node")
	}
	if !exists {
		return nil, pkgerrors.NewNotFound(fmt.Sprintf("node with id %d not found", sourceID))
	}

	records, truncated, err := s.engine.Traverse(ctx, sourceID)
	if err != nil {
		s.metrics.TraversalFailed()
		return nil, s.storeError(err, "traversal failed")
	}

	connected, err := s.assembler.Assemble(ctx, records)
	if err != nil {
		s.metrics.TraversalFailed()
		return nil, s.storeError(err, "failed to assemble traversal result")
	}

	maxDepth := 0
	if len(connected) > 0 {
		maxDepth = connected[len(connected)-1].Depth
	}
	s.metrics.TraversalCompleted(len(connected), maxDepth, truncated)
	span.SetAttributes(
		attribute.Int("graph.connected_count", len(connected)),
		attribute.Int("graph.max_depth", maxDepth),
		attribute.Bool("graph.truncated", truncated),
	)

	s.logger.Info("Traversal completed",
		zap.Int64("sourceID", sourceID),
		zap.Int("totalConnected", len(connected)),
		zap.Int("maxDepth", maxDepth),
		zap.Bool("truncated", truncated),
	)

	return &ConnectedResult{
		SourceNodeID:   sourceID,
		ConnectedNodes: connected,
		TotalConnected: len(connected),
		Truncated:      truncated,
	}, nil
}

// storeError classifies a failure from the store layer. Cancellation keeps
// its identity so callers can tell an abandoned request from a broken store.
func (s *Service) storeError(err error, message string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return pkgerrors.NewUnavailable(message, err)
}
