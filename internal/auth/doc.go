// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package auth authenticates API callers.
//
// Shelfwise does not issue credentials of its own. In jwt mode it verifies
// the HS256 access tokens issued by the library backend using the shared
// secret, and maps the sub, email and role claims to an AuthSubject. In
// none mode (development only) every caller is an anonymous subject with
// the configured default role.
//
// The subject is stored in the request context for the authz middleware
// and for log correlation.
package auth
