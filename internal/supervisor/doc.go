// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package supervisor runs the long-lived parts of the service under a
// suture supervision tree. The services subpackage holds the suture.Service
// wrappers for the HTTP server, the event router and the scheduled anomaly
// scan.
package supervisor
