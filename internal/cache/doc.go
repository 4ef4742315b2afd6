// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package cache provides the in-memory data structures shared by the engines.

# LRU

LRU is a generic, thread-safe least-recently-used cache with per-entry TTL
and lazy expiration. It backs:
  - the TF-IDF vectorizer cache (keyed by a hash of the ordered corpus)
  - the book metadata lookup cache (keyed by ISBN)

	c := cache.NewLRU[string, *BookInfo](1024, 24*time.Hour)
	c.Add(isbn, info)
	if info, ok := c.Get(isbn); ok { ... }

# Aho-Corasick

AhoCorasick matches many keywords against a text in a single pass. The
category classifier builds one automaton from all category keywords and
counts whole-word occurrences per category.

	ac := cache.NewAhoCorasick()
	ac.AddPattern("dragon", "Fantasy")
	ac.Build()
	for _, m := range ac.SearchWords("A dragon's quest") { ... }

Both structures have no external dependencies.
*/
package cache
