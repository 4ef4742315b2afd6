// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// eulerGamma is the Euler-Mascheroni constant used in the harmonic number
// approximation H(i) = ln(i) + gamma.
const eulerGamma = 0.5772156649

// ForestConfig configures an isolation forest.
type ForestConfig struct {
	// Trees is the ensemble size. Default 100.
	Trees int

	// MaxSamples is the per-tree subsample size, capped at the number of
	// rows. Default 256.
	MaxSamples int

	// Seed makes tree construction reproducible. Default 42.
	Seed int64
}

// IsolationForest scores rows by how easily random axis-aligned splits
// isolate them. Anomalies have short average path lengths.
//
// Scores follow the convention
//
//	s(x) = -2^(-E[h(x)] / c(psi))
//
// so lower (more negative) values are more anomalous.
//
// A fitted forest is read-only and safe for concurrent scoring.
type IsolationForest struct {
	cfg   ForestConfig
	trees []*iNode
	psi   int
	dims  int
}

// iNode is an isolation tree node. Leaves have left == nil.
type iNode struct {
	feature   int
	threshold float64
	left      *iNode
	right     *iNode
	size      int
}

// NewIsolationForest creates an unfitted forest.
func NewIsolationForest(cfg ForestConfig) *IsolationForest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 256
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return &IsolationForest{cfg: cfg}
}

// Fit builds the ensemble over rows. All rows must have the same width.
func (f *IsolationForest) Fit(rows [][]float64) error {
	if len(rows) < 2 {
		return errors.New("isolation forest needs at least 2 rows")
	}
	dims := len(rows[0])
	if dims == 0 {
		return errors.New("isolation forest rows have no columns")
	}
	for i, r := range rows {
		if len(r) != dims {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(r), dims)
		}
	}

	psi := f.cfg.MaxSamples
	if psi > len(rows) {
		psi = len(rows)
	}
	maxDepth := int(math.Ceil(math.Log2(math.Max(float64(psi), 2))))

	rng := rand.New(rand.NewSource(f.cfg.Seed)) //nolint:gosec // reproducible sampling, not security sensitive
	trees := make([]*iNode, f.cfg.Trees)
	for t := range trees {
		sample := rng.Perm(len(rows))[:psi]
		trees[t] = buildTree(rows, sample, 0, maxDepth, dims, rng)
	}

	f.trees = trees
	f.psi = psi
	f.dims = dims
	return nil
}

// Score returns the anomaly score of x. Fit must have been called.
func (f *IsolationForest) Score(x []float64) float64 {
	if len(f.trees) == 0 || len(x) != f.dims {
		return 0
	}
	var total float64
	for _, t := range f.trees {
		total += pathLength(x, t, 0)
	}
	mean := total / float64(len(f.trees))
	return -math.Pow(2, -mean/averagePathLength(f.psi))
}

// ScoreAll scores every row.
func (f *IsolationForest) ScoreAll(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f.Score(r)
	}
	return out
}

func buildTree(rows [][]float64, idx []int, depth, maxDepth, dims int, rng *rand.Rand) *iNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &iNode{size: len(idx)}
	}

	// Only features that vary within the node can split it.
	lows := make([]float64, dims)
	highs := make([]float64, dims)
	for d := 0; d < dims; d++ {
		lows[d], highs[d] = math.Inf(1), math.Inf(-1)
	}
	for _, i := range idx {
		for d, v := range rows[i] {
			lows[d] = math.Min(lows[d], v)
			highs[d] = math.Max(highs[d], v)
		}
	}
	splittable := make([]int, 0, dims)
	for d := 0; d < dims; d++ {
		if highs[d] > lows[d] {
			splittable = append(splittable, d)
		}
	}
	if len(splittable) == 0 {
		return &iNode{size: len(idx)}
	}

	feature := splittable[rng.Intn(len(splittable))]
	threshold := lows[feature] + rng.Float64()*(highs[feature]-lows[feature])

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if rows[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &iNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(rows, left, depth+1, maxDepth, dims, rng),
		right:     buildTree(rows, right, depth+1, maxDepth, dims, rng),
		size:      len(idx),
	}
}

func pathLength(x []float64, n *iNode, depth int) float64 {
	for n.left != nil {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is c(n), the mean path length of an unsuccessful
// search in a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

// percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks, (n-1)*p/100.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	pos := (float64(len(sorted)) - 1) * p / 100
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
