package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"graphnav-backend/infrastructure/observability"
)

// Metrics records request counts and latency per chi route pattern, so
// parameterized paths do not explode the label space.
func Metrics(collector *observability.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			collector.ObserveHTTP(r.Method, route, strconv.Itoa(wrapper.statusCode), time.Since(start))
		})
	}
}
