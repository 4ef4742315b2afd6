// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package algorithms implements the ranking strategies used by the
// recommendation engine.
//
// Each strategy implements the recommend.Algorithm interface and is injected
// into recommend.NewEngine through recommend.Strategies.
//
// # Strategies
//
//   - ContentBased: TF-IDF cosine similarity blended with rating
//   - Similarity: pure TF-IDF cosine ranking for "more like this"
//   - CategoryOverlap: category set-membership against reading history
//   - Popularity: borrow count ranking for cold-start readers
//
// # Vector Space
//
// Vectorizer fits a fresh TF-IDF space per request over exactly the seed
// and candidate documents, so availability changes are always reflected.
// Fitted models can be cached for a short TTL keyed by an xxhash of the
// ordered corpus; any change in the corpus misses the cache.
//
// # Determinism
//
// Strategies hold no per-request state and never use randomness. Identical
// inputs produce identical output, including tie order.
//
// # Thread Safety
//
// All strategies are safe for concurrent use. The vectorizer cache is
// internally locked.
package algorithms
