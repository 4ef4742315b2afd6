// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package classify

import "strings"

// Search intents.
const (
	IntentSearch         = "search"
	IntentRecommendation = "recommendation"
	IntentPopular        = "popular"
	IntentNewArrivals    = "new_arrivals"
)

// intentCues are checked in order; the first intent with a cue contained
// anywhere in the query wins.
var intentCues = []struct {
	intent string
	cues   []string
}{
	{IntentRecommendation, []string{"recommend", "suggest", "similar"}},
	{IntentPopular, []string{"popular", "best", "top"}},
	{IntentNewArrivals, []string{"new", "recent", "latest"}},
}

// ParsedQuery is the structured form of a free-text search.
type ParsedQuery struct {
	Keywords []string          `json:"keywords"`
	Intent   string            `json:"intent"`
	Filters  map[string]string `json:"filters"`
}

// SearchIntent is the response for a parsed search query.
type SearchIntent struct {
	Query       string      `json:"query"`
	ParsedQuery ParsedQuery `json:"parsed_query"`
	Message     string      `json:"message"`
}

// ParseSearchIntent splits query into lower-case keywords, detects the
// intent and picks up the first category whose name appears in the query.
// Cue and category checks are substring matches.
func (c *Classifier) ParseSearchIntent(query string) *SearchIntent {
	lower := strings.ToLower(query)

	parsed := ParsedQuery{
		Keywords: strings.Fields(lower),
		Intent:   IntentSearch,
		Filters:  map[string]string{},
	}
	if parsed.Keywords == nil {
		parsed.Keywords = []string{}
	}

intents:
	for _, ic := range intentCues {
		for _, cue := range ic.cues {
			if strings.Contains(lower, cue) {
				parsed.Intent = ic.intent
				break intents
			}
		}
	}

	for i := range c.categories {
		if strings.Contains(lower, strings.ToLower(c.categories[i].Name)) {
			parsed.Filters["category"] = c.categories[i].Name
			break
		}
	}

	return &SearchIntent{
		Query:       query,
		ParsedQuery: parsed,
		Message:     "Search query parsed. Use the intent and filters to query the catalogue.",
	}
}
