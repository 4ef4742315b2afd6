// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Vectorizer builds TF-IDF vector spaces over a request corpus.
//
// The vocabulary is the top MaxFeatures terms by total corpus frequency
// (ties by term ascending) after stop-word removal. Term weights are raw
// counts times the smoothed inverse document frequency
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// and each document row is L2 normalised.
//
// A Vectorizer is safe for concurrent use. Fitted models are immutable and
// may be shared through the optional cache.
type Vectorizer struct {
	maxFeatures int
	stopWords   map[string]struct{}
	models      *cache.LRU[uint64, *Model]
}

// VectorizerConfig contains configuration for the TF-IDF vectorizer.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary size. Default 100.
	MaxFeatures int

	// StopWords are excluded from the vocabulary. Default English list.
	StopWords map[string]struct{}

	// CacheTTL enables caching of fitted models keyed by a hash of the
	// ordered corpus. Zero disables the cache.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the cache. Default 128.
	CacheMaxEntries int
}

// NewVectorizer creates a vectorizer.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = 100
	}
	if cfg.StopWords == nil {
		cfg.StopWords = EnglishStopWords()
	}
	v := &Vectorizer{
		maxFeatures: cfg.MaxFeatures,
		stopWords:   cfg.StopWords,
	}
	if cfg.CacheTTL > 0 {
		if cfg.CacheMaxEntries <= 0 {
			cfg.CacheMaxEntries = 128
		}
		v.models = cache.NewLRU[uint64, *Model](cfg.CacheMaxEntries, cfg.CacheTTL)
	}
	return v
}

// Model is a fitted TF-IDF space.
type Model struct {
	// Terms is the vocabulary in column order (ascending).
	Terms []string

	// IDF holds the idf weight for each column.
	IDF []float64

	// Rows holds one L2-normalised vector per input document.
	Rows [][]float64

	vocab map[string]int
}

// Matrix holds cosine similarities: one row per query (or a single centroid
// row), one column per candidate.
type Matrix [][]float64

// Row returns row i, or nil when the matrix has no such row.
func (m Matrix) Row(i int) []float64 {
	if i < 0 || i >= len(m) {
		return nil
	}
	return m[i]
}

// Fit builds the vector space for docs.
func (v *Vectorizer) Fit(docs []string) *Model {
	if v.models == nil {
		return v.fit(docs)
	}

	key := v.corpusKey(docs)
	if m, ok := v.models.Get(key); ok {
		metrics.RecordVectorizerCache(true)
		return m
	}
	metrics.RecordVectorizerCache(false)

	m := v.fit(docs)
	v.models.Add(key, m)
	return m
}

// Similarity fits a space over queries followed by candidates and returns the
// cosine similarity of every query (or of the centroid of all queries)
// against every candidate. Values are clamped to [0, 1]; zero vectors yield 0.
func (v *Vectorizer) Similarity(queries, candidates []string, centroid bool) Matrix {
	if len(candidates) == 0 || len(queries) == 0 {
		return Matrix{}
	}

	corpus := make([]string, 0, len(queries)+len(candidates))
	corpus = append(corpus, queries...)
	corpus = append(corpus, candidates...)
	m := v.Fit(corpus)

	queryRows := m.Rows[:len(queries)]
	candRows := m.Rows[len(queries):]

	if centroid {
		queryRows = [][]float64{meanRow(queryRows, len(m.Terms))}
	}

	out := make(Matrix, len(queryRows))
	for i, q := range queryRows {
		out[i] = make([]float64, len(candRows))
		for j, c := range candRows {
			out[i][j] = cosine(q, c)
		}
	}
	return out
}

func (v *Vectorizer) fit(docs []string) *Model {
	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, tok := range tokenize(doc) {
			if _, stop := v.stopWords[tok]; stop {
				continue
			}
			counts[i][tok]++
			totals[tok]++
		}
	}

	terms := topTerms(totals, v.maxFeatures)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for col, term := range terms {
		df := 0
		for _, c := range counts {
			if c[term] > 0 {
				df++
			}
		}
		idf[col] = math.Log((1+n)/(1+float64(df))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, c := range counts {
		row := make([]float64, len(terms))
		for term, cnt := range c {
			if col, ok := vocab[term]; ok {
				row[col] = float64(cnt) * idf[col]
			}
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		rows[i] = row
	}

	return &Model{Terms: terms, IDF: idf, Rows: rows, vocab: vocab}
}

// corpusKey hashes the ordered corpus and the vocabulary cap.
func (v *Vectorizer) corpusKey(docs []string) uint64 {
	h := xxhash.New()
	for _, d := range docs {
		_, _ = h.WriteString(d)
		_, _ = h.Write([]byte{0})
	}
	var buf [8]byte
	mf := uint64(v.maxFeatures) //nolint:gosec // maxFeatures is always positive
	for i := range buf {
		buf[i] = byte(mf >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// topTerms returns the k most frequent terms (ties by term ascending),
// sorted ascending for column order.
func topTerms(totals map[string]int, k int) []string {
	terms := make([]string, 0, len(totals))
	for t := range totals {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > k {
		terms = terms[:k]
	}
	sort.Strings(terms)
	return terms
}

// tokenize lower-cases s and returns runs of at least two letters, digits
// or underscores.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	start := -1
	for i, r := range s {
		word := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			tokens = appendToken(tokens, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendToken(tokens, s[start:])
	}
	return tokens
}

func appendToken(tokens []string, tok string) []string {
	if utf8.RuneCountInString(tok) >= 2 {
		return append(tokens, tok)
	}
	return tokens
}

func meanRow(rows [][]float64, width int) []float64 {
	mean := make([]float64, width)
	if len(rows) == 0 {
		return mean
	}
	for _, r := range rows {
		floats.Add(mean, r)
	}
	floats.Scale(1/float64(len(rows)), mean)
	return mean
}

// cosine returns the cosine similarity of a and b clamped to [0, 1].
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(floats.Dot(a, b) / (na * nb))
}
