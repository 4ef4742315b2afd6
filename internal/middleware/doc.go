// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: propagates or generates X-Request-ID and stores it for logging
  - PrometheusMetrics: records request count, latency and in-flight gauge

Both take and return http.HandlerFunc so they compose with plain handlers as
well as with chi via Adapt.
*/
package middleware
