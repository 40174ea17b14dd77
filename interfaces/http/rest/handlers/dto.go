package handlers

import (
	"graphnav-backend/domain/graph"
)

// CreateNodeRequest is the payload for POST /nodes
type CreateNodeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateNodeRequest is the payload for PUT /nodes/{nodeID}
type UpdateNodeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CreateEdgeRequest is the payload for POST /edges
type CreateEdgeRequest struct {
	SourceNodeID int64  `json:"source_node_id" validate:"required,gt=0"`
	TargetNodeID int64  `json:"target_node_id" validate:"required,gt=0"`
	Label        string `json:"label" validate:"omitempty,max=255"`
}

// PaginatedNodesResponse is the page envelope for GET /nodes
type PaginatedNodesResponse struct {
	Items      []*graph.Node `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// PaginatedEdgesResponse wraps a page of edges
type PaginatedEdgesResponse struct {
	Items      []*graph.Edge `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}
