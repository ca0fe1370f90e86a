// Package metrics registers the Prometheus collectors of the bundle service.
// Every series is prefixed with "bundle_service_".
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bundle_service"

// unmatchedRoute labels requests gin could not route, keeping path cardinality bounded.
const unmatchedRoute = "unmatched"

var httpLabels = []string{"method", "route", "status_code"}

// HTTP.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, httpLabels)

	HTTPRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, httpLabels)

	RateLimitRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests answered 429, by limiter scope.",
	}, []string{"scope"})

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "idempotent_replays_total",
		Help:      "Mutations answered from a stored response.",
	})
)

// Bundles, cart and orders.
var (
	BundleAddToCartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bundle_add_to_cart_total",
		Help:      "Bundle add-to-cart submissions by outcome.",
	}, []string{"status"})

	BundleAllocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bundle_allocation_duration_seconds",
		Help:      "Duration of one price allocation pass over a cart.",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	BundleAllocatedGroupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bundle_allocated_groups_total",
		Help:      "Bundle groups priced by the allocator.",
	})

	// CartGuardCorrectionsTotal counts integrity rules that fired, e.g. a stripped parent link.
	CartGuardCorrectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_guard_corrections_total",
		Help:      "Cart integrity corrections and rejections by rule.",
	}, []string{"rule"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders placed at checkout.",
	})
)

// Infrastructure.
var (
	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Cache operations by cache, operation and result.",
	}, []string{"cache", "operation", "result"})

	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Entries currently held, by cache.",
	}, []string{"cache"})

	CacheCapacity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "capacity",
		Help:      "Maximum entries, by cache.",
	}, []string{"cache"})

	// AuditEntriesTotal results are written, failed or dropped.
	AuditEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Audit entries by outcome.",
	}, []string{"result"})

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker position (0 closed, 1 open, 2 half-open).",
	}, []string{"name"})
)

// PrometheusMiddleware observes every request under its route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := prometheus.Labels{
			"method":      c.Request.Method,
			"route":       route,
			"status_code": strconv.Itoa(c.Writer.Status()),
		}
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.With(labels).Inc()
	}
}

func RecordRateLimited(scope string) {
	RateLimitRejectedTotal.WithLabelValues(scope).Inc()
}

func RecordIdempotentReplay() {
	IdempotentReplaysTotal.Inc()
}

// RecordAddToCart records the outcome of a bundle add-to-cart submission.
func RecordAddToCart(status string) {
	BundleAddToCartTotal.WithLabelValues(status).Inc()
}

// RecordAllocation records one allocation pass over the given number of groups.
func RecordAllocation(duration time.Duration, groups int) {
	BundleAllocationDuration.Observe(duration.Seconds())
	BundleAllocatedGroupsTotal.Add(float64(groups))
}

func RecordGuardCorrection(rule string) {
	CartGuardCorrectionsTotal.WithLabelValues(rule).Inc()
}

func RecordOrderPlaced() {
	OrdersPlacedTotal.Inc()
}

func RecordCacheOperation(cache, operation, result string) {
	CacheOperationsTotal.WithLabelValues(cache, operation, result).Inc()
}

// UpdateCacheMetrics publishes the fill level of the named cache.
func UpdateCacheMetrics(cache string, size, capacity int) {
	CacheEntries.WithLabelValues(cache).Set(float64(size))
	CacheCapacity.WithLabelValues(cache).Set(float64(capacity))
}

func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAuditEntries adds n audit entries with the given outcome.
func RecordAuditEntries(result string, n int) {
	if n > 0 {
		AuditEntriesTotal.WithLabelValues(result).Add(float64(n))
	}
}
