// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package models holds the HTTP wire types: the response envelope and the
// request bodies with their validation tags. Domain results (recommendations,
// anomaly reports, classifications) are defined in their own packages and
// carried in APIResponse.Data.
package models
