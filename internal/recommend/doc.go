// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package recommend implements the hybrid book recommendation engine.
//
// # Architecture
//
// The engine fetches live catalogue and borrowing data through a
// library.Source and composes ranking strategies from the algorithms
// subpackage:
//
//   - Content: TF-IDF similarity blended 0.7/0.3 with rating
//   - Collaborative: category overlap with the reader's history
//   - Popularity: borrow count, used only when a reader has no history
//   - Similar: pure similarity for "more like this"
//
// # Operations
//
//   - RecommendForBook: content ranking seeded by one book
//   - RecommendForUser: category matches first, then content matches seeded
//     by the most recently created borrowing, deduplicated
//   - RecommendContentForUser: content ranking against the history centroid
//   - RecommendPopular: available books by borrow count
//   - SimilarBooks: similarity ranking with the target descriptor
//
// Candidates always have a free copy and are never books the reader has
// already borrowed.
//
// # Failure Handling
//
// Backend outages produce an empty response with Degraded set. Unknown
// target books return ErrBookNotFound. Unknown users are not an error:
// they have no history and get the popularity ranking. Malformed backend
// records are returned as errors.
//
// # Usage
//
//	v := algorithms.NewVectorizer(algorithms.VectorizerConfig{})
//	engine, err := recommend.NewEngine(cfg, client, recommend.Strategies{
//	    Content:       algorithms.NewContentBased(algorithms.ContentBasedConfig{Vectorizer: v}),
//	    Collaborative: algorithms.NewCategoryOverlap(algorithms.CategoryOverlapConfig{}),
//	    Popularity:    algorithms.NewPopularity(algorithms.PopularityConfig{}),
//	    Similar:       algorithms.NewSimilarity(v),
//	}, logger)
//	resp, err := engine.RecommendForUser(ctx, userID, 10)
package recommend
