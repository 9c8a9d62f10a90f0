// Package metrics declares the Prometheus metrics exported on /metrics.
// Everything is registered with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookmarket"

// HTTPRequestsTotal counts handled requests.
// Labels: method, route (gin full path), status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ReservationTransitionsTotal counts reservation status changes.
// Labels: to (target status), result ("ok" or "conflict").
var ReservationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_transitions_total",
		Help:      "Total number of attempted reservation status transitions.",
	},
	[]string{"to", "result"},
)

// AssetCleanupTotal counts object deletions after book removal.
// Label result: "ok" or "failed".
var AssetCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_cleanup_total",
		Help:      "Total number of best-effort asset deletions, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts rejected requests per limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by a rate limiter.",
	},
	[]string{"limiter"},
)

// MailSentTotal counts account mails handed to the mailer.
// Labels: kind, result.
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of account mails dispatched, by kind and result.",
	},
	[]string{"kind", "result"},
)
