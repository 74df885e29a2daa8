// Package metrics defines and registers the custom Prometheus metrics of the
// apiforge API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init (promauto);
// HTTP-level metrics come from the echoprometheus middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "apiforge"

// ── Proxy metrics ─────────────────────────────────────────────────────────────

// ProxyExecutionsTotal counts execute calls by outcome.
// Label:
//   - outcome: "responded", "unreachable", "invalid" or "error"
var ProxyExecutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proxy_executions_total",
		Help:      "Total number of proxied requests, by outcome.",
	},
	[]string{"outcome"},
)

// ProxyDuration measures dispatched executions, from dispatch until the remote
// body was read or the call failed.
// Label:
//   - outcome: "responded", "unreachable" or "error"
var ProxyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "proxy_duration_seconds",
		Help:      "Duration of proxied requests against the remote target.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	},
	[]string{"outcome"},
)

// ProxyResponseBytes observes decoded remote payload sizes.
var ProxyResponseBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "proxy_response_bytes",
		Help:      "Size of decoded remote response bodies.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B … 4MiB
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "invalid", "conflict", "denied" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by result.",
	},
	[]string{"action", "result"},
)

// ── Collection metrics ────────────────────────────────────────────────────────

var CollectionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collections_created_total",
		Help:      "Total number of collections created.",
	},
)
