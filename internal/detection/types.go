// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a risk assessment targets an unknown user.
var ErrUserNotFound = errors.New("detection: user not found")

// InsufficientDataMessage accompanies an anomaly report over fewer than two users.
const InsufficientDataMessage = "Not enough data for anomaly detection"

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// rank orders levels for threshold comparisons.
func (l RiskLevel) rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether l is as severe as other or more.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.rank() >= other.rank()
}

// ParseRiskLevel maps a case-sensitive level name to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	l := RiskLevel(s)
	return l, l.rank() >= 0
}

// AnomalyMetrics are the feature values a user was scored on.
type AnomalyMetrics struct {
	TotalBorrowings  int     `json:"total_borrowings"`
	ActiveBorrowings int     `json:"active_borrowings"`
	OverdueCount     int     `json:"overdue_count"`
	AvgDuration      float64 `json:"avg_duration"`
	TotalFines       float64 `json:"total_fines"`
}

// AnomalyResult is one flagged user.
type AnomalyResult struct {
	UserID       string         `json:"user_id"`
	Email        string         `json:"email"`
	AnomalyScore float64        `json:"anomaly_score"`
	IsAnomaly    bool           `json:"is_anomaly"`
	Reasons      []string       `json:"reasons"`
	Metrics      AnomalyMetrics `json:"metrics"`
}

// AnomalyReport is the outcome of a population scan.
type AnomalyReport struct {
	TotalUsersAnalyzed int             `json:"total_users_analyzed"`
	AnomaliesDetected  int             `json:"anomalies_detected"`
	Anomalies          []AnomalyResult `json:"anomalies"`
	InsufficientData   bool            `json:"insufficient_data,omitempty"`
	Message            string          `json:"message,omitempty"`
	Degraded           bool            `json:"degraded,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// RiskMetrics are the inputs to ScoreRisk.
type RiskMetrics struct {
	TotalBorrowings   int     `json:"total_borrowings"`
	CurrentBorrowings int     `json:"current_borrowings"`
	OverdueCount      int     `json:"overdue_count"`
	LateReturns       int     `json:"late_returns"`
	UnpaidFines       float64 `json:"unpaid_fines"`
	AvgDaysLate       float64 `json:"avg_days_late"`
}

// RiskAssessment is the scored risk of a single user.
type RiskAssessment struct {
	UserID         string      `json:"user_id"`
	Email          string      `json:"email"`
	RiskScore      float64     `json:"risk_score"`
	RiskLevel      RiskLevel   `json:"risk_level"`
	RiskFactors    []string    `json:"risk_factors"`
	Metrics        RiskMetrics `json:"metrics"`
	Recommendation string      `json:"recommendation"`
}

// Notifier receives flagged anomalies and elevated risk assessments.
type Notifier interface {
	// Name returns the notifier name (e.g., "events", "log").
	Name() string

	// NotifyAnomaly delivers one flagged user from a population scan.
	NotifyAnomaly(ctx context.Context, result *AnomalyResult) error

	// NotifyRisk delivers an assessment at or above the configured level.
	NotifyRisk(ctx context.Context, assessment *RiskAssessment) error
}
