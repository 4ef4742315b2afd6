// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package events publishes anomaly and risk findings over Watermill.
//
// The Publisher implements detection.Notifier and writes JSON events to
// <prefix>.anomaly.detected and <prefix>.risk.assessed. The bus is either an
// in-process gochannel (backend "memory") or core NATS (backend "nats").
//
// A Router consumes the same topics; the server registers LogHandler so
// every published event is also visible in the service log.
package events
