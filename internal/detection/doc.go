// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package detection flags unusual borrowing behaviour and scores per-user
// risk.
//
// Detection Architecture:
//
//	library.Source -> features.BehaviorVector -> Isolation Forest -> AnomalyReport
//	                                          -> ScoreRisk        -> RiskAssessment
//	                                                                      |
//	                                                                      v
//	                                                                  Notifiers
//
// Anomaly scans cover every reader with at least one borrowing. Each user is
// described by five features (total, active and overdue borrowings, average
// loan duration, unpaid fines). An isolation forest with a fixed seed scores
// the population and the lowest-scoring share, set by the contamination
// parameter, is flagged. Flagged users are explained by comparing their
// features to the population mean plus two or three standard deviations.
//
// Risk Scoring:
// The risk score (0-100) is additive over four capped factors:
//   - overdue books: 10 points each, up to 30
//   - late return rate: rate x 50, up to 25
//   - unpaid fines: 1 point per 10,000 VND, up to 25
//   - average days late: 2 points per day, up to 20
//
// Scores map to Low (<20), Medium (<50), High (<75) and Critical levels,
// each with a recommended librarian action.
//
// Flagged anomalies and assessments at or above EngineConfig.NotifyLevel are
// handed to registered Notifiers, for example the events publisher.
package detection
