// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
	"github.com/tomtom215/shelfwise/internal/supervisor"
	"github.com/tomtom215/shelfwise/internal/supervisor/services"
)

// initRecommend builds the recommendation engine with all four strategies
// sharing one vectorizer.
func initRecommend(cfg *config.Config, src library.Source) (*recommend.Engine, error) {
	rc := cfg.Recommend
	vc := algorithms.VectorizerConfig{MaxFeatures: rc.MaxFeatures}
	if rc.CacheEnabled {
		vc.CacheTTL = rc.CacheTTL
		vc.CacheMaxEntries = rc.CacheMaxEntries
	}
	v := algorithms.NewVectorizer(vc)

	logger := logging.WithComponent("recommend")
	engine, err := recommend.NewEngine(recommend.ConfigFrom(&rc), src, recommend.Strategies{
		Content: algorithms.NewContentBased(algorithms.ContentBasedConfig{
			SimilarityWeight: rc.SimilarityWeight,
			RatingWeight:     rc.RatingWeight,
			Vectorizer:       v,
		}),
		Collaborative: algorithms.NewCategoryOverlap(algorithms.CategoryOverlapConfig{}),
		Popularity:    algorithms.NewPopularity(algorithms.PopularityConfig{}),
		Similar:       algorithms.NewSimilarity(v),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}

	logger.Info().
		Int("max_features", rc.MaxFeatures).
		Bool("cache", rc.CacheEnabled).
		Msg("recommendation engine initialized")
	return engine, nil
}

// initDetection builds the detection engine and, when an interval is
// configured, schedules population scans in the messaging layer.
func initDetection(cfg *config.Config, src library.Source, tree *supervisor.SupervisorTree) (*detection.Engine, error) {
	logger := logging.WithComponent("detection")
	engine, err := detection.NewEngine(detection.EngineConfigFrom(&cfg.Detection, cfg.Events.MinRiskLevel), src, logger)
	if err != nil {
		return nil, fmt.Errorf("detection engine: %w", err)
	}

	if cfg.Detection.ScanInterval > 0 {
		tree.AddMessagingService(services.NewAnomalyScanService(engine, cfg.Detection.ScanInterval, logger))
		logger.Info().Dur("interval", cfg.Detection.ScanInterval).Msg("scheduled anomaly scans enabled")
	}
	return engine, nil
}
