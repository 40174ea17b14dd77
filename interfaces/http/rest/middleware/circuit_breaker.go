package middleware

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns a default configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker creates a circuit breaker middleware that trips when the
// downstream store keeps failing, shedding load instead of queueing it.
func CircuitBreaker(config CircuitBreakerConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (any, error) {
				wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
				next.ServeHTTP(wrapper, r)

				// Only 5xx responses count as failures.
				if wrapper.statusCode >= http.StatusInternalServerError {
					return nil, http.ErrAbortHandler
				}
				return nil, nil
			})

			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				logger.Warn("Circuit breaker rejected request",
					zap.String("name", config.Name),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
			}
		})
	}
}
