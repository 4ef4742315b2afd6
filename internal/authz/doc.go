// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package authz provides role-based authorization using Casbin.
//
// The model and policy are embedded and can be overridden with files named
// in the security configuration. Objects are API route groups
// (recommendations, anomaly, nlp, ocr); actions are read for safe methods
// and write otherwise.
//
// Default policy:
//
//	reader     recommendations:read, nlp:*, ocr:*
//	librarian  reader + anomaly:read
//	admin      everything
//
// Decisions are cached per (role, object, action) in a TTL LRU.
package authz
