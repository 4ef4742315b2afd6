// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/shelfwise/internal/api"
	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/classify"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/ocr"
	"github.com/tomtom215/shelfwise/internal/supervisor"
	"github.com/tomtom215/shelfwise/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.URL).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Shelfwise")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	source := library.NewClient(&cfg.Backend)

	recommender, err := initRecommend(cfg, source)
	if err != nil {
		return err
	}
	detector, err := initDetection(cfg, source, tree)
	if err != nil {
		return err
	}
	eventComponents, err := initEvents(cfg, detector, tree)
	if err != nil {
		return err
	}
	if eventComponents != nil {
		defer eventComponents.Close()
	}

	classifier, err := classify.New(classify.DefaultCategories())
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	remoteOCR := ocr.NewRemoteOCR(&cfg.OCR)
	var recognizer ocr.Recognizer
	if remoteOCR.Enabled() {
		recognizer = remoteOCR
		logging.Info().Str("engine_url", cfg.OCR.EngineURL).Msg("OCR image uploads enabled")
	} else {
		logging.Info().Msg("OCR engine not configured, image uploads disabled")
	}
	isbnService := ocr.NewService(recognizer, ocr.NewBookInfoClient(&cfg.OCR))

	handler, err := buildHTTPHandler(cfg, api.HandlerDeps{
		Recommender:    recommender,
		Detector:       detector,
		Classifier:     classifier,
		ISBN:           isbnService,
		OCREnabled:     remoteOCR.Enabled(),
		EventsEnabled:  eventComponents != nil,
		MaxUploadBytes: int64(cfg.OCR.MaxUploadMB) << 20,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server registered")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildHTTPHandler(cfg *config.Config, deps api.HandlerDeps) (http.Handler, error) {
	authMW, err := auth.NewMiddlewareFromConfig(&cfg.Security, api.WriteError)
	if err != nil {
		return nil, fmt.Errorf("auth middleware: %w", err)
	}
	if authMW.Mode() == auth.AuthModeNone {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Str("role", cfg.Security.DefaultRole).Msg("  Every caller acts with the default role")
		logging.Warn().Msg("  Use AUTH_MODE=jwt outside local development")
		logging.Warn().Msg("============================================================")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfigFrom(&cfg.Security))
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Handler:        api.NewHandler(deps),
		Auth:           authMW,
		Authz:          authz.NewMiddleware(enforcer, api.WriteError),
		ChiMiddleware:  api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	return router.Setup(), nil
}
