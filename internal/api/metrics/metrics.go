// Package metrics defines and registers the custom Prometheus metrics of the
// energy registry. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto and served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energy_registry"

// ── Energy object metrics ─────────────────────────────────────────────────────

// ObjectMutationsTotal counts create/update/delete attempts on energy objects.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "ok", "invalid", "not_found" or "error"
var ObjectMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "object_mutations_total",
		Help:      "Total number of energy object mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// SearchMatches observes how many records a list query matched.
var SearchMatches = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_matches",
		Help:      "Number of records matched by list queries.",
		Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	},
)

// StatisticsViewsTotal counts statistics report computations.
var StatisticsViewsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statistics_views_total",
		Help:      "Total number of statistics reports computed.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok", "invalid", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RoleChangesTotal counts role reassignments performed by administrators.
var RoleChangesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of user role reassignments.",
	},
)
