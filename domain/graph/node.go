package graph

import (
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "graphnav-backend/pkg/errors"
)

// MaxNameLength bounds node names and edge labels, in characters rather
// than bytes so multi-byte names get the full limit.
const MaxNameLength = 255

// Node represents a vertex in the directed graph.
//
// Nodes are owned by the graph store; the traversal core only ever reads
// them. Identity is a stable auto-assigned integer.
type Node struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewNode creates a node with a validated name. The ID is assigned by the
// store on first save.
func NewNode(name, description string) (*Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidation("node name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, pkgerrors.NewValidation("node name exceeds maximum length")
	}

	now := time.Now().UTC()
	return &Node{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename updates the node name, revalidating it.
func (n *Node) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidation("node name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return pkgerrors.NewValidation("node name exceeds maximum length")
	}
	n.Name = name
	n.UpdatedAt = time.Now().UTC()
	return nil
}
