// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package library is the typed client for the library backend REST API.

The backend owns books, borrowings, users and fines; Shelfwise only reads
them. Responses come in two envelope shapes ({data, meta} and bare arrays)
and several record shapes depending on backend version, for example:

	"category": "Fantasy"                    or {"name": "Fantasy"}
	"authors":  ["A"]                        or [{"name": "A"}] or [{"author": {"name": "A"}}]
	"rating":   4.5                          or "4.5"
	"bookId":   "b1"                         or "book": {"id": "b1"}
	"status":   "active" / "BORROWED"        (normalised to lower-case, borrowed -> active)

All of these are normalised at this boundary into Book, Borrowing, User and
Fine; every record is then validated and a malformed one fails the whole
fetch with ErrMalformedRecord.

# Errors

  - ErrNotFound: single-entity fetch returned 404
  - ErrUpstreamUnavailable: transport failure, timeout or non-2xx status
  - ErrMalformedRecord: a record failed decoding or validation

No retries are attempted. Callers decide whether a failure degrades to an
empty result or surfaces to the client.
*/
package library
