package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for auth attempts.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// AuthAttempts counts sign-up and sign-in attempts by operation and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraudwatch_auth_attempts_total",
		Help: "Total number of sign-up and sign-in attempts",
	},
	[]string{"operation", "outcome"},
)

// UpstreamFetches counts requests to the upstream fraud feed.
var UpstreamFetches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraudwatch_upstream_fetches_total",
		Help: "Total number of fraud feed fetches",
	},
	[]string{"feed", "status"},
)

// FraudCacheLookups counts redis cache hits and misses for fraud feeds.
var FraudCacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraudwatch_fraud_cache_lookups_total",
		Help: "Fraud feed cache lookups by result",
	},
	[]string{"feed", "result"},
)

// RegisterMetrics registers all collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(UpstreamFetches)
	reg.MustRegister(FraudCacheLookups)
}
