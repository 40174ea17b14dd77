package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"graphnav-backend/application/ports"
	"graphnav-backend/domain/graph"
)

// GraphStore provides an in-memory implementation of ports.GraphStore.
// It backs the development mode and the HTTP-level tests; semantics match
// the DynamoDB store, including edge cascade on node deletion.
type GraphStore struct {
	mu         sync.RWMutex
	nodes      map[int64]*graph.Node
	edges      map[int64]*graph.Edge
	nextNodeID int64
	nextEdgeID int64
}

var _ ports.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes: make(map[int64]*graph.Node),
		edges: make(map[int64]*graph.Edge),
	}
}

// NodeExists reports whether a node with the given id exists.
func (s *GraphStore) NodeExists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.nodes[id]
	return ok, nil
}

// GetNode retrieves a node by its ID.
func (s *GraphStore) GetNode(ctx context.Context, id int64) (*graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, ports.ErrNodeNotFound
	}
	copied := *node
	return &copied, nil
}

// GetOutgoingTargets returns the distinct target ids of all edges leaving
// the given node. Parallel edges collapse to one entry.
func (s *GraphStore) GetOutgoingTargets(ctx context.Context, sourceID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	distinct := make(map[int64]struct{})
	for _, edge := range s.edges {
		if edge.SourceNodeID == sourceID {
			distinct[edge.TargetNodeID] = struct{}{}
		}
	}

	targets := make([]int64, 0, len(distinct))
	for id := range distinct {
		targets = append(targets, id)
	}
	return targets, nil
}

// CreateNode persists a new node and assigns its ID.
func (s *GraphStore) CreateNode(ctx context.Context, node *graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNodeID++
	node.ID = s.nextNodeID
	copied := *node
	s.nodes[node.ID] = &copied
	return nil
}

// UpdateNode persists changes to an existing node.
func (s *GraphStore) UpdateNode(ctx context.Context, node *graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[node.ID]; !ok {
		return ports.ErrNodeNotFound
	}
	node.UpdatedAt = time.Now().UTC()
	copied := *node
	s.nodes[node.ID] = &copied
	return nil
}

// DeleteNode removes a node and all its incident edges.
func (s *GraphStore) DeleteNode(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return ports.ErrNodeNotFound
	}
	delete(s.nodes, id)

	for edgeID, edge := range s.edges {
		if edge.SourceNodeID == id || edge.TargetNodeID == id {
			delete(s.edges, edgeID)
		}
	}
	return nil
}

// ListNodes returns a page of nodes ordered by id, plus the total count.
func (s *GraphStore) ListNodes(ctx context.Context, offset, limit int) ([]*graph.Node, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*graph.Node, 0, len(s.nodes))
	for _, node := range s.nodes {
		copied := *node
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []*graph.Node{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// CreateEdge persists a new directed edge after validating both endpoints.
func (s *GraphStore) CreateEdge(ctx context.Context, edge *graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[edge.SourceNodeID]; !ok {
		return ports.ErrNodeNotFound
	}
	if _, ok := s.nodes[edge.TargetNodeID]; !ok {
		return ports.ErrNodeNotFound
	}

	s.nextEdgeID++
	edge.ID = s.nextEdgeID
	copied := *edge
	s.edges[edge.ID] = &copied
	return nil
}

// ListEdges returns a page of edges ordered by id, plus the total count.
func (s *GraphStore) ListEdges(ctx context.Context, offset, limit int) ([]*graph.Edge, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*graph.Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		copied := *edge
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []*graph.Edge{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// DeleteEdge removes a single edge by id.
func (s *GraphStore) DeleteEdge(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[id]; !ok {
		return ports.ErrEdgeNotFound
	}
	delete(s.edges, id)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *GraphStore) Ping(ctx context.Context) error {
	return nil
}
