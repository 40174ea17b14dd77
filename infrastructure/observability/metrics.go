package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global collector instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application.
// It satisfies traversal.Metrics.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Traversal metrics
	TraversalsTotal  *prometheus.CounterVec
	TraversalDepth   prometheus.Histogram
	TraversalVisited prometheus.Histogram

	// Business metrics
	NodesCreated prometheus.Counter
	NodesDeleted prometheus.Counter
	EdgesCreated prometheus.Counter
	EdgesDeleted prometheus.Counter
}

// NewCollector creates the process-wide metrics collector. The first call
// fixes the namespace; later calls return the existing collector and ignore
// their namespace argument, so repeated wiring (and tests building multiple
// routers) never double-registers metrics.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		TraversalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traversals_total",
				Help:      "Total number of graph traversals by outcome",
			},
			[]string{"outcome"},
		),
		TraversalDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "traversal_max_depth",
				Help:      "Deepest BFS level reached per traversal",
				Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
			},
		),
		TraversalVisited: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "traversal_visited_nodes",
				Help:      "Number of reachable nodes found per traversal",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created",
		}),
		NodesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_deleted_total",
			Help:      "Total number of nodes deleted",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_created_total",
			Help:      "Total number of edges created",
		}),
		EdgesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_deleted_total",
			Help:      "Total number of edges deleted",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.TraversalsTotal,
		c.TraversalDepth,
		c.TraversalVisited,
		c.NodesCreated,
		c.NodesDeleted,
		c.EdgesCreated,
		c.EdgesDeleted,
		collectors.NewGoCollector(),
	)

	globalCollector = c
	return c
}

// Handler exposes the registry for the /metrics endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// TraversalCompleted records a finished traversal
func (c *Collector) TraversalCompleted(visited, maxDepth int, truncated bool) {
	outcome := "ok"
	if truncated {
		outcome = "truncated"
	}
	c.TraversalsTotal.WithLabelValues(outcome).Inc()
	c.TraversalDepth.Observe(float64(maxDepth))
	c.TraversalVisited.Observe(float64(visited))
}

// TraversalFailed records a traversal aborted by a store failure or cancellation
func (c *Collector) TraversalFailed() {
	c.TraversalsTotal.WithLabelValues("failed").Inc()
}

// ObserveHTTP records one handled HTTP request
func (c *Collector) ObserveHTTP(method, route, status string, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
