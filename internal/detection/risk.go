// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"fmt"
	"math"

	"github.com/tomtom215/shelfwise/internal/features"
)

// Factor caps. Their sum is the maximum score of 100.
const (
	maxOverduePoints  = 30
	maxLateRatePoints = 25
	maxFinePoints     = 25
	maxDaysLatePoints = 20

	pointsPerOverdue = 10
	lateRateWeight   = 50
	finesPerPoint    = 10000
	pointsPerDayLate = 2
)

var recommendations = map[RiskLevel]string{
	RiskLow:      "User is in good standing. No action required.",
	RiskMedium:   "Monitor user activity. Send reminder notifications for due dates.",
	RiskHigh:     "Restrict new borrowings until overdue books are returned and fines are paid.",
	RiskCritical: "CRITICAL: Suspend account immediately. Contact user to resolve outstanding issues.",
}

// ScoreRisk computes the additive risk score for m. The result is rounded
// to two decimals and lies in [0, 100]. Factors are listed in the order
// overdue, late rate, fines, days late.
func ScoreRisk(m RiskMetrics) (score float64, level RiskLevel, factors []string) {
	factors = []string{}

	if m.OverdueCount > 0 {
		p := min(m.OverdueCount*pointsPerOverdue, maxOverduePoints)
		score += float64(p)
		factors = append(factors, fmt.Sprintf("Has %d overdue book(s) (+%d points)", m.OverdueCount, p))
	}

	if m.TotalBorrowings > 0 {
		rate := float64(m.LateReturns) / float64(m.TotalBorrowings)
		p := math.Min(rate*lateRateWeight, maxLateRatePoints)
		score += p
		if p > 0 {
			factors = append(factors, fmt.Sprintf("Late return rate: %.1f%% (+%.1f points)", rate*100, p))
		}
	}

	if m.UnpaidFines > 0 {
		p := math.Min(m.UnpaidFines/finesPerPoint, maxFinePoints)
		score += p
		factors = append(factors, fmt.Sprintf("Unpaid fines: %.0f VND (+%.1f points)", m.UnpaidFines, p))
	}

	if m.AvgDaysLate > 0 {
		p := math.Min(m.AvgDaysLate*pointsPerDayLate, maxDaysLatePoints)
		score += p
		factors = append(factors, fmt.Sprintf("Average %.1f days late (+%.1f points)", m.AvgDaysLate, p))
	}

	// The level follows the reported score, so 19.996 rounds to 20 and is Medium.
	score = math.Round(score*100) / 100
	return score, LevelFor(score), factors
}

// LevelFor maps a score to its level: <20 Low, <50 Medium, <75 High, else Critical.
func LevelFor(score float64) RiskLevel {
	switch {
	case score < 20:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Recommendation returns the suggested action for level.
func Recommendation(level RiskLevel) string {
	return recommendations[level]
}

// Assess builds the full assessment for a behaviour vector.
func Assess(v *features.BehaviorVector) *RiskAssessment {
	m := RiskMetrics{
		TotalBorrowings:   v.TotalBorrowings,
		CurrentBorrowings: v.CurrentBorrowCount,
		OverdueCount:      v.OverdueCount,
		LateReturns:       v.LateReturns,
		UnpaidFines:       v.UnpaidFines,
		AvgDaysLate:       v.AvgDaysLate,
	}
	score, level, factors := ScoreRisk(m)
	return &RiskAssessment{
		UserID:         v.UserID,
		Email:          v.Email,
		RiskScore:      score,
		RiskLevel:      level,
		RiskFactors:    factors,
		Metrics:        m,
		Recommendation: Recommendation(level),
	}
}
