package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/domain/graph"
	"graphnav-backend/infrastructure/observability"
	pkgerrors "graphnav-backend/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// NodeHandler handles node CRUD requests
type NodeHandler struct {
	store        ports.GraphStore
	collector    *observability.Collector
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(store ports.GraphStore, collector *observability.Collector, logger *zap.Logger, errorHandler *pkgerrors.ErrorHandler) *NodeHandler {
	return &NodeHandler{
		store:        store,
		collector:    collector,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	node, err := graph.NewNode(req.Name, req.Description)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.store.CreateNode(r.Context(), node); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnavailable("failed to create node", err))
		return
	}

	h.collector.NodesCreated.Inc()
	respondJSON(w, http.StatusCreated, node)
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "nodeID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	node, err := h.store.GetNode(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, h.translate(id, err))
		return
	}

	respondJSON(w, http.StatusOK, node)
}

// ListNodes handles GET /nodes
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if page < 1 {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidation("page must be >= 1"))
		return
	}
	if pageSize < 1 || pageSize > maxPageSize {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidation("page_size must be between 1 and 100"))
		return
	}

	offset := (page - 1) * pageSize
	nodes, total, err := h.store.ListNodes(r.Context(), offset, pageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnavailable("failed to list nodes", err))
		return
	}

	respondJSON(w, http.StatusOK, PaginatedNodesResponse{
		Items:      nodes,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}

// UpdateNode handles PUT /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "nodeID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req UpdateNodeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	node, err := h.store.GetNode(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, h.translate(id, err))
		return
	}

	if err := node.Rename(req.Name); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	node.Description = req.Description

	if err := h.store.UpdateNode(r.Context(), node); err != nil {
		h.errorHandler.Handle(w, r, h.translate(id, err))
		return
	}

	respondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "nodeID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.store.DeleteNode(r.Context(), id); err != nil {
		h.errorHandler.Handle(w, r, h.translate(id, err))
		return
	}

	h.collector.NodesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// translate maps store sentinels to the API error taxonomy
func (h *NodeHandler) translate(id int64, err error) error {
	if errors.Is(err, ports.ErrNodeNotFound) {
		return pkgerrors.NewNotFound(fmt.Sprintf("node with id %d not found", id))
	}
	return pkgerrors.NewUnavailable("graph store request failed", err)
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
