package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"graphnav-backend/application/services/traversal"
	pkgerrors "graphnav-backend/pkg/errors"
)

// GraphHandler handles graph traversal requests
type GraphHandler struct {
	traversal    *traversal.Service
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(traversalService *traversal.Service, logger *zap.Logger, errorHandler *pkgerrors.ErrorHandler) *GraphHandler {
	return &GraphHandler{
		traversal:    traversalService,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// GetConnectedNodes handles GET /nodes/{nodeID}/connected.
//
// It returns every node reachable from the given node by following directed
// edges, each with its minimum depth, ordered by depth then id. An unknown
// node yields 404; a node with no outgoing edges yields an empty list.
func (h *GraphHandler) GetConnectedNodes(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "nodeID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.traversal.GetConnected(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
