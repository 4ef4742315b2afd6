// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/events"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/supervisor"
	"github.com/tomtom215/shelfwise/internal/supervisor/services"
)

// EventComponents holds the event bus and its consumers.
type EventComponents struct {
	Bus       *events.Bus
	Publisher *events.Publisher
	Router    *events.Router
}

// Close releases the bus. The router is closed by its supervisor service.
func (c *EventComponents) Close() {
	if err := c.Bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing event bus")
	}
}

// initEvents registers the notifiers on the detection engine. It returns
// nil when events are disabled; the webhook notifier is independent of
// the bus.
func initEvents(cfg *config.Config, engine *detection.Engine, tree *supervisor.SupervisorTree) (*EventComponents, error) {
	if cfg.Events.WebhookURL != "" {
		engine.RegisterNotifier(detection.NewWebhookNotifier(detection.WebhookConfig{URL: cfg.Events.WebhookURL}))
	}

	if !cfg.Events.Enabled {
		logging.Info().Msg("Events disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())
	bus, err := events.NewBus(&cfg.Events, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("events bus: %w", err)
	}

	publisher := events.NewPublisher(bus.Publisher, cfg.Events.TopicPrefix)
	engine.RegisterNotifier(publisher)

	router, err := events.NewRouter(bus.Subscriber, publisher.Topics(),
		events.LogHandler(logging.WithComponent("events")), wmLogger)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("events router: %w", err)
	}
	tree.AddMessagingService(services.NewEventRouterService(router))

	logging.Info().
		Str("backend", bus.Backend()).
		Str("prefix", cfg.Events.TopicPrefix).
		Str("min_risk_level", cfg.Events.MinRiskLevel).
		Msg("Events enabled")
	return &EventComponents{Bus: bus, Publisher: publisher, Router: router}, nil
}
