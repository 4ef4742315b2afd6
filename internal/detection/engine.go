// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/features"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// EngineConfig configures the detection engine.
type EngineConfig struct {
	Anomaly AnomalyConfig

	// PopulationRole restricts anomaly scans to users with this role.
	PopulationRole string

	// UserLimit bounds how many users a scan fetches. Zero means no limit.
	UserLimit int

	// NotifyLevel is the lowest risk level passed to notifiers.
	NotifyLevel RiskLevel
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Anomaly:        DefaultAnomalyConfig(),
		PopulationRole: library.RoleReader,
		NotifyLevel:    RiskHigh,
	}
}

// EngineConfigFrom derives engine settings from the application configuration.
// minRiskLevel comes from the events section; unknown values keep High.
func EngineConfigFrom(dc *config.DetectionConfig, minRiskLevel string) EngineConfig {
	cfg := DefaultEngineConfig()
	if level, ok := ParseRiskLevel(minRiskLevel); ok {
		cfg.NotifyLevel = level
	}
	if dc == nil {
		return cfg
	}
	if dc.Contamination > 0 {
		cfg.Anomaly.Contamination = dc.Contamination
	}
	if dc.Trees > 0 {
		cfg.Anomaly.Forest.Trees = dc.Trees
	}
	if dc.MaxSamples > 0 {
		cfg.Anomaly.Forest.MaxSamples = dc.MaxSamples
	}
	if dc.Seed != 0 {
		cfg.Anomaly.Forest.Seed = dc.Seed
	}
	if dc.PopulationRole != "" {
		cfg.PopulationRole = dc.PopulationRole
	}
	if dc.UserLimit > 0 {
		cfg.UserLimit = dc.UserLimit
	}
	return cfg
}

// Engine runs anomaly scans and risk assessments over live backend data.
type Engine struct {
	cfg    EngineConfig
	source library.Source
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	notifiers []Notifier
}

// NewEngine creates a new detection engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg EngineConfig, src library.Source, logger zerolog.Logger) (*Engine, error) {
	if src == nil {
		return nil, errors.New("library source is required")
	}
	if cfg.Anomaly.Contamination <= 0 || cfg.Anomaly.Contamination > 0.5 {
		return nil, fmt.Errorf("contamination must be in (0, 0.5], got %v", cfg.Anomaly.Contamination)
	}
	if _, ok := ParseRiskLevel(string(cfg.NotifyLevel)); !ok {
		return nil, fmt.Errorf("unknown notify level %q", cfg.NotifyLevel)
	}
	return &Engine{
		cfg:       cfg,
		source:    src,
		logger:    logger.With().Str("component", "detection").Logger(),
		now:       time.Now,
		notifiers: make([]Notifier, 0),
	}, nil
}

// RegisterNotifier adds a notifier to the engine.
func (e *Engine) RegisterNotifier(notifier Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifiers = append(e.notifiers, notifier)
	e.logger.Info().Str("notifier", notifier.Name()).Msg("registered notifier")
}

// DetectAnomalousUsers scans every user of the configured role who has at
// least one borrowing. A backend outage yields an empty degraded report.
func (e *Engine) DetectAnomalousUsers(ctx context.Context) (*AnomalyReport, error) {
	start := time.Now()
	logger := logging.From(ctx, e.logger).With().Str("op", "anomaly_scan").Logger()

	activity, err := library.PopulationActivity(ctx, e.source, e.cfg.PopulationRole, e.cfg.UserLimit)
	if err != nil {
		if library.IsUnavailable(err) {
			logger.Warn().Err(err).Msg("backend unavailable, returning degraded report")
			metrics.RecordAnomalyRun("degraded", 0, 0, time.Since(start))
			return &AnomalyReport{
				Anomalies:   []AnomalyResult{},
				Degraded:    true,
				GeneratedAt: e.now().UTC(),
			}, nil
		}
		metrics.RecordAnomalyRun("error", 0, 0, time.Since(start))
		return nil, fmt.Errorf("fetch library data: %w", err)
	}

	vectors := features.BuildBehaviorVectors(activity.Users, activity.Borrowings, activity.Fines, e.now())
	report, err := DetectAnomalies(vectors, e.cfg.Anomaly)
	if err != nil {
		metrics.RecordAnomalyRun("error", len(vectors), 0, time.Since(start))
		return nil, err
	}
	report.GeneratedAt = e.now().UTC()

	if report.InsufficientData {
		metrics.RecordAnomalyRun("insufficient_data", len(vectors), 0, time.Since(start))
		logger.Debug().Int("users", len(vectors)).Msg("not enough users for anomaly detection")
		return report, nil
	}

	metrics.RecordAnomalyRun("ok", report.TotalUsersAnalyzed, report.AnomaliesDetected, time.Since(start))
	logger.Info().
		Int("users", report.TotalUsersAnalyzed).
		Int("flagged", report.AnomaliesDetected).
		Dur("duration", time.Since(start)).
		Msg("anomaly scan complete")

	for i := range report.Anomalies {
		e.notifyAnomaly(ctx, &report.Anomalies[i])
	}
	return report, nil
}

// ComputeUserRisk scores one user. Unknown users yield ErrUserNotFound.
// Backend outages are returned since a single assessment has no empty form.
func (e *Engine) ComputeUserRisk(ctx context.Context, userID string) (*RiskAssessment, error) {
	logger := logging.From(ctx, e.logger).With().Str("op", "risk").Str("user_id", userID).Logger()

	activity, err := library.UserActivity(ctx, e.source, userID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("fetch library data: %w", err)
	}

	vectors := features.BuildBehaviorVectors(activity.Users, activity.Borrowings, activity.Fines, e.now())
	assessment := Assess(&vectors[0])
	metrics.RecordRiskAssessment(string(assessment.RiskLevel))

	logger.Debug().
		Float64("score", assessment.RiskScore).
		Str("level", string(assessment.RiskLevel)).
		Msg("risk assessed")

	if assessment.RiskLevel.AtLeast(e.cfg.NotifyLevel) {
		e.notifyRisk(ctx, assessment)
	}
	return assessment, nil
}

func (e *Engine) snapshotNotifiers() []Notifier {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Notifier(nil), e.notifiers...)
}

// notifyAnomaly and notifyRisk deliver synchronously. Failures are logged
// and never fail the request.
func (e *Engine) notifyAnomaly(ctx context.Context, result *AnomalyResult) {
	for _, n := range e.snapshotNotifiers() {
		if err := n.NotifyAnomaly(ctx, result); err != nil {
			e.logger.Error().Err(err).Str("notifier", n.Name()).Str("user_id", result.UserID).Msg("failed to send anomaly")
		}
	}
}

func (e *Engine) notifyRisk(ctx context.Context, assessment *RiskAssessment) {
	for _, n := range e.snapshotNotifiers() {
		if err := n.NotifyRisk(ctx, assessment); err != nil {
			e.logger.Error().Err(err).Str("notifier", n.Name()).Str("user_id", assessment.UserID).Msg("failed to send risk assessment")
		}
	}
}
