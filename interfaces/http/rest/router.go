package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/application/services/traversal"
	"graphnav-backend/infrastructure/config"
	"graphnav-backend/infrastructure/observability"
	"graphnav-backend/interfaces/http/rest/handlers"
	"graphnav-backend/interfaces/http/rest/middleware"
	pkgerrors "graphnav-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	store        ports.GraphStore
	traversal    *traversal.Service
	collector    *observability.Collector
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	store ports.GraphStore,
	traversalService *traversal.Service,
	collector *observability.Collector,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
) *Router {
	return &Router{
		cfg:          cfg,
		store:        store,
		traversal:    traversalService,
		collector:    collector,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.collector))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", rt.collector.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("graph-api"), rt.logger))

		nodeHandler := handlers.NewNodeHandler(rt.store, rt.collector, rt.logger, rt.errorHandler)
		graphHandler := handlers.NewGraphHandler(rt.traversal, rt.logger, rt.errorHandler)
		edgeHandler := handlers.NewEdgeHandler(rt.store, rt.collector, rt.logger, rt.errorHandler)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Get("/", nodeHandler.ListNodes)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Put("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Get("/{nodeID}/connected", graphHandler.GetConnectedNodes)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Get("/", edgeHandler.ListEdges)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})
	})

	return router
}

// healthCheck reports service and store health
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	overall := "healthy"
	storeStatus := "ok"
	if err := rt.store.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
		storeStatus = "unreachable"
		rt.logger.Warn("Health check failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    overall,
		"store":     storeStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
