// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package classify

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/shelfwise/internal/cache"
)

// FallbackCategory is predicted when no keyword matches.
const FallbackCategory = "General"

// fallbackConfidence is the confidence reported for FallbackCategory.
const fallbackConfidence = 0.5

const (
	maxTopCategories  = 5
	maxMatchedPerTop  = 5
	confidenceDecimal = 1000
)

// Category is a named keyword list. Keywords are matched as whole words,
// case-insensitively. A keyword may contain spaces.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories returns the built-in table of 15 categories.
func DefaultCategories() []Category {
	return []Category{
		{"Science Fiction", []string{"space", "future", "alien", "robot", "technology", "sci-fi", "cyberpunk", "dystopia"}},
		{"Fantasy", []string{"magic", "wizard", "dragon", "fantasy", "kingdom", "quest", "mythical", "enchanted"}},
		{"Mystery", []string{"detective", "murder", "crime", "mystery", "investigation", "clue", "suspect"}},
		{"Romance", []string{"love", "romance", "relationship", "heart", "passion", "wedding", "dating"}},
		{"Thriller", []string{"thriller", "suspense", "danger", "action", "spy", "conspiracy", "chase"}},
		{"Horror", []string{"horror", "ghost", "haunted", "terror", "fear", "nightmare", "monster"}},
		{"Biography", []string{"life", "biography", "memoir", "autobiography", "story of", "journey"}},
		{"History", []string{"history", "historical", "war", "ancient", "century", "era", "civilization"}},
		{"Self-Help", []string{"self-help", "motivation", "success", "habits", "productivity", "mindfulness"}},
		{"Business", []string{"business", "entrepreneur", "management", "leadership", "strategy", "marketing"}},
		{"Science", []string{"science", "research", "theory", "physics", "chemistry", "biology", "mathematics"}},
		{"Technology", []string{"technology", "programming", "computer", "software", "coding", "algorithm", "data"}},
		{"Children", []string{"children", "kids", "young", "illustrated", "picture book", "bedtime"}},
		{"Poetry", []string{"poetry", "poems", "verse", "rhyme", "lyric"}},
		{"Cooking", []string{"cooking", "recipe", "food", "cuisine", "chef", "kitchen", "baking"}},
	}
}

// CategoryScore is one ranked category in a classification.
type CategoryScore struct {
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Result is the outcome of classifying a title and description.
type Result struct {
	Title             string          `json:"title"`
	PredictedCategory string          `json:"predicted_category"`
	Confidence        float64         `json:"confidence"`
	TopCategories     []CategoryScore `json:"top_categories"`
}

// keywordRef identifies a keyword by its position in the table.
type keywordRef struct {
	category int
	keyword  int
}

// Classifier assigns a category by counting whole-word keyword hits.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	categories []Category
	matcher    *cache.AhoCorasick
}

// New builds a classifier over categories. The table is copied.
func New(categories []Category) (*Classifier, error) {
	if len(categories) == 0 {
		return nil, errors.New("classifier needs at least one category")
	}

	table := make([]Category, len(categories))
	matcher := cache.NewAhoCorasick()
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, errors.New("category name is required")
		}
		table[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
		for j, kw := range c.Keywords {
			matcher.AddPattern(kw, keywordRef{category: i, keyword: j})
		}
	}
	matcher.Build()

	return &Classifier{categories: table, matcher: matcher}, nil
}

// Categories returns the category names in table order.
func (c *Classifier) Categories() []string {
	out := make([]string, len(c.categories))
	for i := range c.categories {
		out[i] = c.categories[i].Name
	}
	return out
}

// Classify scores title and description against every category. The
// predicted category has the most keyword occurrences; ties keep table
// order. Confidence is the winner's share of all occurrences.
func (c *Classifier) Classify(title, description string) *Result {
	text := title + " " + description

	// hits[category][keyword] counts occurrences.
	hits := make([][]int, len(c.categories))
	for _, m := range c.matcher.SearchWords(text) {
		ref, ok := m.Data.(keywordRef)
		if !ok {
			continue
		}
		if hits[ref.category] == nil {
			hits[ref.category] = make([]int, len(c.categories[ref.category].Keywords))
		}
		hits[ref.category][ref.keyword]++
	}

	type scored struct {
		index   int
		score   int
		matched []string
	}
	var ranked []scored
	total := 0
	for i, counts := range hits {
		s := scored{index: i}
		for j, n := range counts {
			if n > 0 {
				s.score += n
				s.matched = append(s.matched, c.categories[i].Keywords[j])
			}
		}
		if s.score > 0 {
			ranked = append(ranked, s)
			total += s.score
		}
	}

	if len(ranked) == 0 {
		return &Result{
			Title:             title,
			PredictedCategory: FallbackCategory,
			Confidence:        fallbackConfidence,
			TopCategories:     []CategoryScore{{Category: FallbackCategory, Confidence: fallbackConfidence}},
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	top := ranked
	if len(top) > maxTopCategories {
		top = top[:maxTopCategories]
	}
	scores := make([]CategoryScore, len(top))
	for i, s := range top {
		matched := s.matched
		if len(matched) > maxMatchedPerTop {
			matched = matched[:maxMatchedPerTop]
		}
		scores[i] = CategoryScore{
			Category:        c.categories[s.index].Name,
			Confidence:      round3(float64(s.score) / float64(total)),
			MatchedKeywords: matched,
		}
	}

	return &Result{
		Title:             title,
		PredictedCategory: c.categories[ranked[0].index].Name,
		Confidence:        round3(float64(ranked[0].score) / float64(total)),
		TopCategories:     scores,
	}
}

func round3(x float64) float64 {
	return math.Round(x*confidenceDecimal) / confidenceDecimal
}
