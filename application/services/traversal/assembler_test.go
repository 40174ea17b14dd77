package traversal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/domain/graph"
)

// stubNodes is a map-backed node reader.
type stubNodes struct {
	nodes map[int64]*graph.Node
	err   error
}

func (s *stubNodes) NodeExists(ctx context.Context, id int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.nodes[id]
	return ok, nil
}

func (s *stubNodes) GetNode(ctx context.Context, id int64) (*graph.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	node, ok := s.nodes[id]
	if !ok {
		return nil, ports.ErrNodeNotFound
	}
	return node, nil
}

func testNode(id int64, name string) *graph.Node {
	now := time.Now().UTC()
	return &graph.Node{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
}

func TestAssembler_Assemble_PreservesOrder(t *testing.T) {
	nodes := &stubNodes{nodes: map[int64]*graph.Node{
		2: testNode(2, "beta"),
		3: testNode(3, "gamma"),
		5: testNode(5, "epsilon"),
	}}
	assembler := NewAssembler(nodes, zap.NewNop())

	connected, err := assembler.Assemble(context.Background(), []Reachable{
		{NodeID: 2, Depth: 1},
		{NodeID: 3, Depth: 1},
		{NodeID: 5, Depth: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, []ConnectedNode{
		{ID: 2, Name: "beta", Depth: 1},
		{ID: 3, Name: "gamma", Depth: 1},
		{ID: 5, Name: "epsilon", Depth: 2},
	}, connected)
}

func TestAssembler_Assemble_SkipsVanishedNodes(t *testing.T) {
	// Node 3 was deleted between traversal and assembly.
	nodes := &stubNodes{nodes: map[int64]*graph.Node{
		2: testNode(2, "beta"),
		5: testNode(5, "epsilon"),
	}}
	assembler := NewAssembler(nodes, zap.NewNop())

	connected, err := assembler.Assemble(context.Background(), []Reachable{
		{NodeID: 2, Depth: 1},
		{NodeID: 3, Depth: 1},
		{NodeID: 5, Depth: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, []ConnectedNode{
		{ID: 2, Name: "beta", Depth: 1},
		{ID: 5, Name: "epsilon", Depth: 2},
	}, connected)
}

func TestAssembler_Assemble_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("timeout")
	assembler := NewAssembler(&stubNodes{err: storeErr}, zap.NewNop())

	connected, err := assembler.Assemble(context.Background(), []Reachable{
		{NodeID: 2, Depth: 1},
	})

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, connected)
}

func TestAssembler_Assemble_EmptyInput(t *testing.T) {
	assembler := NewAssembler(&stubNodes{}, zap.NewNop())

	connected, err := assembler.Assemble(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, connected)
	assert.Empty(t, connected)
}
