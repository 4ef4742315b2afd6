// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package services provides suture.Service wrappers. Each wrapper depends
// on a small interface so the supervisor never imports the components
// it runs.
package services
