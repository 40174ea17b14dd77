package graph

import (
	"time"
	"unicode/utf8"

	pkgerrors "graphnav-backend/pkg/errors"
)

// Edge represents a directed connection between two nodes.
//
// Edges are directed: an edge from A to B does not imply B to A. Multiple
// edges between the same ordered pair are allowed (the graph is a
// multigraph); consumers that only care about reachability must deduplicate
// targets.
type Edge struct {
	ID           int64     `json:"id"`
	SourceNodeID int64     `json:"source_node_id"`
	TargetNodeID int64     `json:"target_node_id"`
	Label        string    `json:"label,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEdge creates an edge between two node ids. Whether the endpoints exist
// is the store's concern at save time; this only validates shape.
func NewEdge(sourceID, targetID int64, label string) (*Edge, error) {
	if sourceID <= 0 || targetID <= 0 {
		return nil, pkgerrors.NewValidation("edge endpoints must be positive node ids")
	}
	if utf8.RuneCountInString(label) > MaxNameLength {
		return nil, pkgerrors.NewValidation("edge label exceeds maximum length")
	}

	return &Edge{
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
		Label:        label,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
