// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"errors"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
)

// ErrorWriter renders an authentication failure. code is a machine-readable
// error code such as "UNAUTHORIZED".
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// MiddlewareConfig holds configuration for Middleware.
type MiddlewareConfig struct {
	AuthMode AuthMode

	// JWTManager is required for AuthModeJWT.
	JWTManager *JWTManager

	// DefaultRole is granted to anonymous callers in AuthModeNone and to
	// tokens that carry no role claim.
	DefaultRole string

	// OnError renders failures. Defaults to plain-text http.Error.
	OnError ErrorWriter
}

// Middleware authenticates requests and stores the AuthSubject in the
// request context.
type Middleware struct {
	mode          AuthMode
	authenticator Authenticator
	defaultRole   string
	onError       ErrorWriter
}

// NewMiddleware creates an authentication middleware.
func NewMiddleware(cfg *MiddlewareConfig) (*Middleware, error) {
	m := &Middleware{
		mode:        cfg.AuthMode,
		defaultRole: cfg.DefaultRole,
		onError:     cfg.OnError,
	}
	if m.onError == nil {
		m.onError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}

	switch cfg.AuthMode {
	case AuthModeNone:
	case AuthModeJWT:
		if cfg.JWTManager == nil {
			return nil, errors.New("JWT manager required for jwt auth mode")
		}
		m.authenticator = NewJWTAuthenticator(cfg.JWTManager)
	default:
		return nil, errors.New("unsupported auth mode: " + string(cfg.AuthMode))
	}
	return m, nil
}

// NewMiddlewareFromConfig builds the middleware from security settings.
func NewMiddlewareFromConfig(cfg *config.SecurityConfig, onError ErrorWriter) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	mc := &MiddlewareConfig{AuthMode: mode, DefaultRole: cfg.DefaultRole, OnError: onError}
	if mode == AuthModeJWT {
		mgr, err := NewJWTManager(cfg)
		if err != nil {
			return nil, err
		}
		mc.JWTManager = mgr
	}
	return NewMiddleware(mc)
}

// Mode returns the configured auth mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Authenticate enforces authentication on next.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var subject *AuthSubject
		if m.mode == AuthModeNone {
			subject = &AuthSubject{ID: "anonymous", AuthMethod: AuthModeNone}
		} else {
			var err error
			subject, err = m.authenticator.Authenticate(r.Context(), r)
			if err != nil {
				m.handleAuthError(w, r, err)
				return
			}
		}
		if len(subject.Roles) == 0 && m.defaultRole != "" {
			subject.Roles = []string{m.defaultRole}
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithSubject(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleAuthError sends the appropriate HTTP error response for auth errors.
func (m *Middleware) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")

	w.Header().Set("WWW-Authenticate", `Bearer realm="shelfwise"`)
	switch {
	case errors.Is(err, ErrNoCredentials):
		m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: authentication required")
	case errors.Is(err, ErrExpiredCredentials):
		m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: credentials expired")
	default:
		m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: invalid credentials")
	}
}
