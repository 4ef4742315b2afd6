// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package api serves the Shelfwise HTTP API.

Routes are mounted on a chi router. Public endpoints (/, /health, /metrics)
sit outside /api/v1; everything under /api/v1 is rate limited per IP,
authenticated by the auth middleware and authorized per route group with
casbin:

	/api/v1/recommendations  recommendations
	/api/v1/anomaly          anomaly
	/api/v1/nlp              nlp
	/api/v1/ocr              ocr

Responses use the models.APIResponse envelope. Errors carry a stable code
(NOT_FOUND, VALIDATION_ERROR, SERVICE_UNAVAILABLE, ...) and a message;
internal error text is logged and never returned to the client.

Backend outages on list endpoints are not errors: the engines return an
empty result marked degraded and the handler responds 200.
*/
package api
