// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package main is the entry point for the Shelfwise server.

Shelfwise is the analytics companion of a library management backend. It
reads books, borrowings, users and fines from the backend REST API and
serves recommendations, anomaly detection, risk scoring, text
classification and ISBN extraction over HTTP.

# Application Architecture

	RootSupervisor ("shelfwise")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event router (EVENTS_ENABLED=true)
	│   └── Anomaly scan (DETECTION_SCAN_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Library client for the backend API
 4. Recommendation and detection engines
 5. Events bus (memory or NATS) and notifiers
 6. Classifier and OCR service
 7. Authentication (none or jwt) and casbin authorization
 8. HTTP router and supervisor tree

# Configuration

Common environment variables:

	BACKEND_URL          library backend base URL (default http://localhost:3000/api)
	HTTP_PORT            listen port (default 8000)
	AUTH_MODE            none or jwt
	JWT_SECRET           HS256 secret shared with the backend
	EVENTS_ENABLED       publish anomaly and risk events
	EVENTS_BACKEND       memory or nats
	NATS_URL             NATS server for EVENTS_BACKEND=nats
	EVENTS_WEBHOOK_URL   optional webhook for the same notifications
	OCR_ENGINE_URL       OCR engine for image uploads (unset disables them)

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server with the configured shutdown timeout and closes the event router.

# Example Usage

	export BACKEND_URL=http://library-api:3000/api
	export AUTH_MODE=jwt
	export JWT_SECRET=$(cat /run/secrets/jwt)
	./shelfwise
*/
package main
