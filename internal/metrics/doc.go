// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

The package exposes metrics for:
  - HTTP request latency and throughput
  - Library backend fetch latency and failures
  - Recommendation generation (per strategy) and vectorizer cache efficiency
  - Anomaly detection runs and risk assessments by level
  - OCR engine and book info lookups
  - Event publication

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8000/metrics

All collectors are registered on the default registry through promauto, so
the Record* helpers can be called from any package without wiring.
*/
package metrics
