// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package ocr extracts ISBNs from book cover text and resolves them to
// metadata.
//
// Image recognition is delegated to an external OCR HTTP engine
// (RemoteOCR). Metadata comes from the Google Books volumes API through
// BookInfoClient, which rate limits outbound calls with a token bucket and
// keeps successful lookups in a TTL-bounded LRU cache.
package ocr
