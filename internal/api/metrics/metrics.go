// Package metrics defines and registers the custom Prometheus metrics of the
// account service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Authentication metrics ───────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer credentials seen by the request
// authenticator.
// Label:
//   - result: "anonymous", "authenticated", "malformed", "invalid", "unknown_account" or "error"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of requests processed by the authentication filter, by result.",
	},
	[]string{"result"},
)

// ── Account metrics ──────────────────────────────────────────────────────────

// RegistrationsTotal counts successfully registered accounts.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)

// PasswordResetsTotal counts password reset activity.
// Label:
//   - stage: "requested", "notified", "notify_failed", "notify_dropped" or "completed"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset events, by stage.",
	},
	[]string{"stage"},
)

// NotifyQueueDepth tracks the number of reset notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of reset notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotifyDuration measures how long a single downstream notification takes.
// Label:
//   - result: "ok" or "error"
var NotifyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notify_duration_seconds",
		Help:      "Duration of reset notification delivery from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
