// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterAuthorization(t *testing.T) {
	h := newTestServer(t, serverOptions{authMode: "jwt"})

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		bearer   string
		wantCode int
		wantErr  string
	}{
		{"no token", http.MethodGet, "/api/v1/recommendations/popular", "", "", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/recommendations/popular", "", "not-a-jwt", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"reader recommendations", http.MethodGet, "/api/v1/recommendations/popular", "", token(t, "U1", "reader"), http.StatusOK, ""},
		{"reader nlp write", http.MethodPost, "/api/v1/nlp/classify", `{"title":"x"}`, token(t, "U1", "reader"), http.StatusOK, ""},
		{"reader anomaly", http.MethodGet, "/api/v1/anomaly/users", "", token(t, "U1", "reader"), http.StatusForbidden, ErrCodeForbidden},
		{"no role falls back to reader", http.MethodGet, "/api/v1/anomaly/users", "", token(t, "U1", ""), http.StatusForbidden, ErrCodeForbidden},
		{"librarian anomaly", http.MethodGet, "/api/v1/anomaly/users", "", token(t, "L1", "librarian"), http.StatusOK, ""},
		{"librarian inherits reader", http.MethodGet, "/api/v1/recommendations/popular", "", token(t, "L1", "librarian"), http.StatusOK, ""},
		{"admin anomaly", http.MethodGet, "/api/v1/anomaly/users", "", token(t, "A1", "admin"), http.StatusOK, ""},
		{"unknown role", http.MethodGet, "/api/v1/recommendations/popular", "", token(t, "X1", "guest"), http.StatusForbidden, ErrCodeForbidden},
		{"health stays public", http.MethodGet, "/health", "", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.body, tt.bearer)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" && (env.Error == nil || env.Error.Code != tt.wantErr) {
				t.Errorf("error = %+v, want %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestRouterNoneModeUsesDefaultRole(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	if rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/popular", "", ""); rec.Code != http.StatusOK {
		t.Errorf("recommendations status = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/anomaly/users", "", ""); rec.Code != http.StatusForbidden {
		t.Errorf("anomaly status = %d, want 403 for default reader role", rec.Code)
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/popular", "", "")
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Content-Type":           "application/json",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestRouterRateLimit(t *testing.T) {
	h := newTestServer(t, serverOptions{rateLimit: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/popular", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb", `a\x0ab`},
		{"tab\there", `tab\x09here`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
