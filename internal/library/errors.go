// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library

import "errors"

var (
	// ErrNotFound is returned when a single book or user does not exist.
	ErrNotFound = errors.New("library: record not found")

	// ErrUpstreamUnavailable wraps transport failures and non-2xx responses.
	ErrUpstreamUnavailable = errors.New("library: backend unavailable")

	// ErrMalformedRecord wraps decode and validation failures.
	ErrMalformedRecord = errors.New("library: malformed record")
)
