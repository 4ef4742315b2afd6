// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/shelfwise/internal/features"
)

// AnomalyConfig tunes DetectAnomalies.
type AnomalyConfig struct {
	// Contamination is the expected share of anomalous users, in (0, 0.5].
	Contamination float64
	Forest        ForestConfig
}

// DefaultAnomalyConfig returns contamination 0.1 with 100 trees, 256
// samples and seed 42.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		Contamination: 0.1,
		Forest:        ForestConfig{Trees: 100, MaxSamples: 256, Seed: 42},
	}
}

// DetectAnomalies fits an isolation forest over the behaviour vectors and
// returns the users scoring below the contamination percentile, in input
// order. Fewer than two vectors yields an insufficient-data report.
func DetectAnomalies(vectors []features.BehaviorVector, cfg AnomalyConfig) (*AnomalyReport, error) {
	if len(vectors) < 2 {
		return &AnomalyReport{
			TotalUsersAnalyzed: len(vectors),
			Anomalies:          []AnomalyResult{},
			InsufficientData:   true,
			Message:            InsufficientDataMessage,
		}, nil
	}
	if cfg.Contamination <= 0 || cfg.Contamination > 0.5 {
		return nil, fmt.Errorf("contamination %v out of range (0, 0.5]", cfg.Contamination)
	}

	rows := make([][]float64, len(vectors))
	for i := range vectors {
		rows[i] = vectors[i].AnomalyFeatures()
	}

	forest := NewIsolationForest(cfg.Forest)
	if err := forest.Fit(rows); err != nil {
		return nil, fmt.Errorf("fit isolation forest: %w", err)
	}
	scores := forest.ScoreAll(rows)

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	offset := percentile(sorted, cfg.Contamination*100)

	th := newThresholds(rows)
	anomalies := make([]AnomalyResult, 0)
	for i := range vectors {
		if scores[i] >= offset {
			continue
		}
		v := &vectors[i]
		anomalies = append(anomalies, AnomalyResult{
			UserID:       v.UserID,
			Email:        v.Email,
			AnomalyScore: scores[i],
			IsAnomaly:    true,
			Reasons:      th.reasons(v),
			Metrics: AnomalyMetrics{
				TotalBorrowings:  v.TotalBorrowings,
				ActiveBorrowings: v.ActiveBorrowings,
				OverdueCount:     v.OverdueCount,
				AvgDuration:      v.AvgDurationDays,
				TotalFines:       v.UnpaidFines,
			},
		})
	}

	return &AnomalyReport{
		TotalUsersAnalyzed: len(vectors),
		AnomaliesDetected:  len(anomalies),
		Anomalies:          anomalies,
	}, nil
}

// Column indexes into features.BehaviorVector.AnomalyFeatures.
const (
	colTotal = iota
	colActive
	colOverdue
	colDuration
	colFines
)

// thresholds holds mean + k*sd cutoffs per feature column.
type thresholds struct {
	active, overdue, fines, total float64
}

func newThresholds(rows [][]float64) thresholds {
	col := func(c int) []float64 {
		out := make([]float64, len(rows))
		for i, r := range rows {
			out[i] = r[c]
		}
		return out
	}
	cutoff := func(c int, k float64) float64 {
		mean, sd := stat.MeanStdDev(col(c), nil)
		return mean + k*sd
	}
	return thresholds{
		active:  cutoff(colActive, 2),
		overdue: cutoff(colOverdue, 2),
		fines:   cutoff(colFines, 2),
		total:   cutoff(colTotal, 3),
	}
}

func (t thresholds) reasons(v *features.BehaviorVector) []string {
	var out []string
	if float64(v.ActiveBorrowings) > t.active {
		out = append(out, fmt.Sprintf("Unusually high active borrowings: %d", v.ActiveBorrowings))
	}
	if float64(v.OverdueCount) > t.overdue {
		out = append(out, fmt.Sprintf("High number of overdue books: %d", v.OverdueCount))
	}
	if v.UnpaidFines > t.fines {
		out = append(out, fmt.Sprintf("High unpaid fines: %.0f VND", v.UnpaidFines))
	}
	if float64(v.TotalBorrowings) > t.total {
		out = append(out, fmt.Sprintf("Excessive borrowing activity: %d books", v.TotalBorrowings))
	}
	if len(out) == 0 {
		out = []string{"General unusual pattern detected"}
	}
	return out
}
