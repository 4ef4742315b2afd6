// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package classify provides lightweight text understanding for the catalogue:
// keyword-based category prediction, search intent parsing and matching of
// natural-language analytics requests to canned queries.
//
// Keyword counting runs on a single Aho-Corasick automaton built over every
// keyword of every category, so a text is scanned once regardless of table
// size. Only whole-word matches count.
//
// Example:
//
//	c, _ := classify.New(classify.DefaultCategories())
//	r := c.Classify("The Dragon Quest", "A wizard and his magic")
//	// r.PredictedCategory == "Fantasy"
package classify
