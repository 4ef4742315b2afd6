// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts authorization decisions by object, action and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"object", "action", "decision"},
	)

	// AuthzCacheLookupsTotal counts decision cache lookups.
	AuthzCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_authz_cache_lookups_total",
			Help: "Total number of authorization cache lookups",
		},
		[]string{"result"},
	)
)

func recordDecision(object, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(object, action, decision).Inc()
}

func recordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	AuthzCacheLookupsTotal.WithLabelValues(result).Inc()
}
