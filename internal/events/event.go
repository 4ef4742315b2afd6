// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/shelfwise/internal/detection"
)

// Event types.
const (
	TypeAnomalyDetected = "anomaly_detected"
	TypeRiskAssessed    = "risk_assessed"
)

// Topic suffixes appended to the configured prefix.
const (
	topicAnomaly = "anomaly.detected"
	topicRisk    = "risk.assessed"
)

// Event is the JSON payload published for anomaly and risk findings.
type Event struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Score     float64   `json:"score"`
	Level     string    `json:"level,omitempty"`
	Reasons   []string  `json:"reasons"`
	Timestamp time.Time `json:"timestamp"`
}

// Topics names the topics for a prefix.
type Topics struct {
	Anomaly string
	Risk    string
}

// TopicsFor returns the topics under prefix.
func TopicsFor(prefix string) Topics {
	return Topics{
		Anomaly: prefix + "." + topicAnomaly,
		Risk:    prefix + "." + topicRisk,
	}
}

// All returns every topic.
func (t Topics) All() []string {
	return []string{t.Anomaly, t.Risk}
}

// NewAnomalyEvent builds an event from an anomaly finding.
func NewAnomalyEvent(r *detection.AnomalyResult, now time.Time) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      TypeAnomalyDetected,
		UserID:    r.UserID,
		Score:     r.AnomalyScore,
		Reasons:   nonNil(r.Reasons),
		Timestamp: now.UTC(),
	}
}

// NewRiskEvent builds an event from a risk assessment.
func NewRiskEvent(a *detection.RiskAssessment, now time.Time) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      TypeRiskAssessed,
		UserID:    a.UserID,
		Score:     a.RiskScore,
		Level:     string(a.RiskLevel),
		Reasons:   nonNil(a.RiskFactors),
		Timestamp: now.UTC(),
	}
}

// Decode parses an event payload.
func Decode(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
