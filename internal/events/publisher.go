// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Publisher publishes detection findings as events.
type Publisher struct {
	pub    message.Publisher
	topics Topics
	now    func() time.Time
}

var _ detection.Notifier = (*Publisher)(nil)

// NewPublisher creates a Publisher writing to topics under prefix.
func NewPublisher(pub message.Publisher, prefix string) *Publisher {
	return &Publisher{pub: pub, topics: TopicsFor(prefix), now: time.Now}
}

// Name implements detection.Notifier.
func (p *Publisher) Name() string {
	return "events"
}

// Topics returns the topics this publisher writes to.
func (p *Publisher) Topics() Topics {
	return p.topics
}

// NotifyAnomaly publishes an anomaly_detected event.
func (p *Publisher) NotifyAnomaly(ctx context.Context, result *detection.AnomalyResult) error {
	return p.publish(ctx, p.topics.Anomaly, NewAnomalyEvent(result, p.now()))
}

// NotifyRisk publishes a risk_assessed event.
func (p *Publisher) NotifyRisk(ctx context.Context, assessment *detection.RiskAssessment) error {
	return p.publish(ctx, p.topics.Risk, NewRiskEvent(assessment, p.now()))
}

func (p *Publisher) publish(ctx context.Context, topic string, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("type", ev.Type)
	msg.Metadata.Set("user_id", ev.UserID)
	msg.SetContext(ctx)

	err = p.pub.Publish(topic, msg)
	metrics.RecordEventPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
