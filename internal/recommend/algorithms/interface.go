// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"

	"github.com/tomtom215/shelfwise/internal/library"
)

// BaseAlgorithm provides common functionality for all strategies.
type BaseAlgorithm struct {
	name string
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// checkContext returns the context error if it has been cancelled.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// seedIDs returns the set of seed book IDs.
func seedIDs(seeds []library.Book) map[string]struct{} {
	ids := make(map[string]struct{}, len(seeds))
	for i := range seeds {
		ids[seeds[i].ID] = struct{}{}
	}
	return ids
}

// clamp01 restricts x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
