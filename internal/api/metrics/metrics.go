// Package metrics defines and registers the console's Prometheus metrics.
// Metrics are registered with the default registry on package init and
// exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/admin-console/internal/core/domain"
)

const namespace = "console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure", "invalid" or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts requested by the operator.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts.",
	},
)

// SessionState is 1 for the current session state and 0 for the others.
var SessionState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_state",
		Help:      "Current session state (1 = active).",
	},
	[]string{"state"},
)

// SetSessionState flips the SessionState gauge to state.
func SetSessionState(state domain.SessionState) {
	for _, s := range []domain.SessionState{domain.StateLoading, domain.StateUnauthenticated, domain.StateAuthenticated} {
		v := 0.0
		if s == state {
			v = 1
		}
		SessionState.WithLabelValues(s.String()).Set(v)
	}
}

// ── Access control metrics ────────────────────────────────────────────────────

// ChecksTotal counts access validations.
// Labels:
//   - trigger: "navigation", "mount", "route", "visibility" or "popstate"
//   - outcome: "allow", "defer", "login_required" or "forbidden"
var ChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_checks_total",
		Help:      "Total number of access validations, by trigger and outcome.",
	},
	[]string{"trigger", "outcome"},
)

// ViolationsTotal counts security violations reported by the client.
var ViolationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "violations_total",
		Help:      "Total number of client-reported security violations.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditDroppedTotal counts security events discarded on a full audit queue.
// Label:
//   - type: the security event type
var AuditDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of security events dropped before persistence.",
	},
	[]string{"type"},
)
