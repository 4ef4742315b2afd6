// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/detection"
)

// AnomalyScanner is satisfied by *detection.Engine.
type AnomalyScanner interface {
	DetectAnomalousUsers(ctx context.Context) (*detection.AnomalyReport, error)
}

// AnomalyScanService periodically runs an anomaly scan. Findings reach the
// engine's notifiers, so the scan is how events are produced without API
// traffic.
type AnomalyScanService struct {
	scanner  AnomalyScanner
	interval time.Duration
	logger   zerolog.Logger
}

// NewAnomalyScanService creates the service. interval must be positive.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnomalyScanService(scanner AnomalyScanner, interval time.Duration, logger zerolog.Logger) *AnomalyScanService {
	return &AnomalyScanService{
		scanner:  scanner,
		interval: interval,
		logger:   logger.With().Str("service", "anomaly-scan").Logger(),
	}
}

// Serve implements suture.Service. Scan failures are logged and retried on
// the next tick rather than restarting the service.
func (s *AnomalyScanService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("anomaly scan service starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *AnomalyScanService) scan(ctx context.Context) {
	start := time.Now()
	report, err := s.scanner.DetectAnomalousUsers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("scheduled anomaly scan failed")
		}
		return
	}
	s.logger.Info().
		Int("users", report.TotalUsersAnalyzed).
		Int("anomalies", report.AnomaliesDetected).
		Bool("degraded", report.Degraded).
		Bool("insufficient_data", report.InsufficientData).
		Dur("duration", time.Since(start)).
		Msg("scheduled anomaly scan complete")
}

// String names the service in supervisor logs.
func (s *AnomalyScanService) String() string {
	return "anomaly-scan"
}
