// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Webhook event types.
const (
	WebhookEventAnomaly = "anomaly_detected"
	WebhookEventRisk    = "risk_assessed"
)

// WebhookNotifier posts anomalies and risk assessments to an HTTP endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
}

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL     string
	Headers map[string]string // e.g. Authorization
	Timeout time.Duration

	// MinInterval spaces consecutive deliveries. Default 500ms.
	MinInterval time.Duration
}

// WebhookPayload is the JSON body sent to the endpoint. Exactly one of
// Anomaly and Risk is set.
type WebhookPayload struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Anomaly   *AnomalyResult  `json:"anomaly,omitempty"`
	Risk      *RiskAssessment `json:"risk,omitempty"`
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &WebhookNotifier{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// Name returns the notifier name.
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// NotifyAnomaly posts a flagged user.
func (n *WebhookNotifier) NotifyAnomaly(ctx context.Context, result *AnomalyResult) error {
	return n.post(ctx, WebhookPayload{EventType: WebhookEventAnomaly, Anomaly: result})
}

// NotifyRisk posts a risk assessment.
func (n *WebhookNotifier) NotifyRisk(ctx context.Context, assessment *RiskAssessment) error {
	return n.post(ctx, WebhookPayload{EventType: WebhookEventRisk, Risk: assessment})
}

func (n *WebhookNotifier) post(ctx context.Context, payload WebhookPayload) error {
	if n.url == "" {
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	payload.Source = "shelfwise"
	payload.Timestamp = time.Now().UTC()
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
