// Package telemetry holds domain counters exported on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mazpan"

var (
	// Logins counts login attempts by outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// Purchases counts shop purchases by product type and outcome.
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "shop",
		Name:      "purchases_total",
		Help:      "Shop purchase attempts by product type and outcome.",
	}, []string{"type", "outcome"})

	// RevenueCents accumulates sold value in cents.
	RevenueCents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "shop",
		Name:      "revenue_cents_total",
		Help:      "Total value of completed purchases in cents.",
	})

	// RoleUpgrades counts self-service upgrades by target role and outcome.
	RoleUpgrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "entitlement",
		Name:      "upgrades_total",
		Help:      "Role upgrade attempts by target role and outcome.",
	}, []string{"role", "outcome"})

	// RolesExpired counts temporary roles downgraded by the lazy expiry guard.
	RolesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "entitlement",
		Name:      "roles_expired_total",
		Help:      "Temporary roles reverted to User after expiry.",
	})

	// AccountsUploaded counts parsed account records stored.
	AccountsUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "accounts",
		Name:      "uploaded_total",
		Help:      "Account records stored through uploads.",
	})

	// AdminActions counts admin dispatcher actions by name and outcome.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admin",
		Name:      "actions_total",
		Help:      "Admin user actions by action and outcome.",
	}, []string{"action", "outcome"})

	// JobRuns counts scheduled and manual job runs by job name and outcome.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "job",
		Name:      "runs_total",
		Help:      "Background job runs by job and outcome.",
	}, []string{"job", "outcome"})

	// JobDuration observes how long job runs take.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "job",
		Name:      "duration_seconds",
		Help:      "Background job run time.",
		Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 600},
	}, []string{"job"})
)

// Outcome labels an operation result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
