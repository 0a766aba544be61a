package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts CRUD operations by operation and outcome code.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_operations_total",
		Help: "Total number of CRUD operations by operation and result",
	}, []string{"operation", "result"})

	// TokenVerifications counts token verifications by token kind and result.
	TokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_token_verifications_total",
		Help: "Total number of token verifications by kind and result",
	}, []string{"kind", "result"})

	// TokenCacheLookups counts service token cache lookups by result (hit, miss, error).
	TokenCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_token_cache_lookups_total",
		Help: "Total number of service token cache lookups",
	}, []string{"result"})

	// AuthRequestLatency records latency of calls made to the authentication service.
	AuthRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "users_auth_request_latency_seconds",
		Help:    "Authentication service request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RateLimitRejections counts requests rejected by the rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_rate_limit_rejections_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"resource"})
)

// RecordOperation increments the operation counter. The result is "ok" or the error code.
func RecordOperation(operation, result string) {
	OperationsTotal.WithLabelValues(operation, result).Inc()
}
