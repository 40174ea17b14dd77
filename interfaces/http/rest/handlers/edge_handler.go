package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/domain/graph"
	"graphnav-backend/infrastructure/observability"
	pkgerrors "graphnav-backend/pkg/errors"
)

// EdgeHandler handles edge requests
type EdgeHandler struct {
	store        ports.GraphStore
	collector    *observability.Collector
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(store ports.GraphStore, collector *observability.Collector, logger *zap.Logger, errorHandler *pkgerrors.ErrorHandler) *EdgeHandler {
	return &EdgeHandler{
		store:        store,
		collector:    collector,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	edge, err := graph.NewEdge(req.SourceNodeID, req.TargetNodeID, req.Label)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.store.CreateEdge(r.Context(), edge); err != nil {
		if errors.Is(err, ports.ErrNodeNotFound) {
			h.errorHandler.Handle(w, r, pkgerrors.NewNotFound("source or target node not found"))
			return
		}
		h.errorHandler.Handle(w, r, pkgerrors.NewUnavailable("failed to create edge", err))
		return
	}

	h.collector.EdgesCreated.Inc()
	respondJSON(w, http.StatusCreated, edge)
}

// ListEdges handles GET /edges
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
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
	edges, total, err := h.store.ListEdges(r.Context(), offset, pageSize)
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnavailable("failed to list edges", err))
		return
	}

	respondJSON(w, http.StatusOK, PaginatedEdgesResponse{
		Items:      edges,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "edgeID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.store.DeleteEdge(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrEdgeNotFound) {
			h.errorHandler.Handle(w, r, pkgerrors.NewNotFound("edge not found"))
			return
		}
		h.errorHandler.Handle(w, r, pkgerrors.NewUnavailable("failed to delete edge", err))
		return
	}

	h.collector.EdgesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}
