package traversal

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"graphnav-backend/application/ports"
)

// ConnectedNode is one entry of the externally visible traversal result.
type ConnectedNode struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// Assembler joins traversal records back to node metadata.
type Assembler struct {
	nodes  ports.NodeReader
	logger *zap.Logger
}

// NewAssembler creates a result assembler.
func NewAssembler(nodes ports.NodeReader, logger *zap.Logger) *Assembler {
	return &Assembler{
		nodes:  nodes,
		logger: logger,
	}
}

// Assemble resolves the name of every reachable node, preserving the
// engine's ordering (depth ascending, then id ascending).
//
// A record whose node has vanished from the store (a delete racing the
// traversal) is skipped and logged rather than failing the whole request.
// Store failures other than not-found propagate unchanged.
func (a *Assembler) Assemble(ctx context.Context, records []Reachable) ([]ConnectedNode, error) {
	connected := make([]ConnectedNode, 0, len(records))
	for _, record := range records {
		node, err := a.nodes.GetNode(ctx, record.NodeID)
		if err != nil {
			if errors.Is(err, ports.ErrNodeNotFound) {
				a.logger.Warn("Reachable node missing from store, skipping",
					zap.Int64("nodeID", record.NodeID),
					zap.Int("depth", record.Depth),
				)
				continue
			}
			return nil, err
		}
		connected = append(connected, ConnectedNode{
			ID:    node.ID,
			Name:  node.Name,
			Depth: record.Depth,
		})
	}
	return connected, nil
}
