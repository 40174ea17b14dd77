package ports

import (
	"context"
	"errors"

	"graphnav-backend/domain/graph"
)

// Sentinel errors returned by GraphStore implementations. Callers translate
// these at the service boundary; the store itself stays transport-agnostic.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
)

// GraphStore defines the interface for graph persistence.
// This is a port in hexagonal architecture - the traversal core and the
// HTTP layer only ever see this contract, never a concrete store.
type GraphStore interface {
	NodeReader
	EdgeReader

	// CreateNode persists a new node and assigns its ID
	CreateNode(ctx context.Context, node *graph.Node) error

	// UpdateNode persists changes to an existing node
	UpdateNode(ctx context.Context, node *graph.Node) error

	// DeleteNode removes a node and cascades to all incident edges
	DeleteNode(ctx context.Context, id int64) error

	// ListNodes returns a page of nodes ordered by id, plus the total count
	ListNodes(ctx context.Context, offset, limit int) ([]*graph.Node, int, error)

	// CreateEdge persists a new directed edge and assigns its ID.
	// Both endpoints must exist; ErrNodeNotFound is returned otherwise.
	CreateEdge(ctx context.Context, edge *graph.Edge) error

	// DeleteEdge removes a single edge by id
	DeleteEdge(ctx context.Context, id int64) error

	// ListEdges returns a page of edges ordered by id, plus the total count
	ListEdges(ctx context.Context, offset, limit int) ([]*graph.Edge, int, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}

// NodeReader is the node-metadata half of the read contract used by the
// traversal core.
type NodeReader interface {
	// NodeExists reports whether a node with the given id exists
	NodeExists(ctx context.Context, id int64) (bool, error)

	// GetNode retrieves a node by its ID, or ErrNodeNotFound
	GetNode(ctx context.Context, id int64) (*graph.Node, error)
}

// EdgeReader is the edge-lookup half of the read contract used by the
// traversal core.
type EdgeReader interface {
	// GetOutgoingTargets returns the distinct target node ids of all edges
	// whose source is the given node. Order is unspecified; duplicates from
	// parallel edges are already removed.
	GetOutgoingTargets(ctx context.Context, sourceID int64) ([]int64, error)
}
