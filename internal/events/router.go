// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
)

// Handler consumes a decoded event.
type Handler func(ctx context.Context, ev *Event) error

// Router runs event handlers on the bus subscriber.
type Router struct {
	router *message.Router
}

// NewRouter builds a router with panic recovery and bounded retries,
// and registers handle on every topic.
func NewRouter(sub message.Subscriber, topics Topics, handle Handler, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	r, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	r.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)

	for _, topic := range topics.All() {
		r.AddNoPublisherHandler("events_"+topic, topic, sub, func(msg *message.Message) error {
			ev, err := Decode(msg.Payload)
			if err != nil {
				// Undecodable payloads are acked; retrying cannot fix them.
				logger.Error("Dropping malformed event", err, watermill.LogFields{"uuid": msg.UUID})
				return nil
			}
			return handle(msg.Context(), ev)
		})
	}

	return &Router{router: r}, nil
}

// Run blocks until ctx is canceled or the router fails.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}

// LogHandler returns a Handler that writes each event to logger.
func LogHandler(logger zerolog.Logger) Handler {
	return func(_ context.Context, ev *Event) error {
		e := logger.Info()
		if ev.Type == TypeRiskAssessed {
			e = e.Str("level", ev.Level)
		}
		e.Str("event_id", ev.EventID).
			Str("type", ev.Type).
			Str("user_id", ev.UserID).
			Float64("score", ev.Score).
			Strs("reasons", ev.Reasons).
			Msg("Detection event")
		return nil
	}
}
