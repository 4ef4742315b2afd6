// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/shelfwise/internal/auth"
)

func TestMiddlewareRequire(t *testing.T) {
	mw := NewMiddleware(setupEnforcer(t), nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		subject *auth.AuthSubject
		object  string
		method  string
		want    int
	}{
		{"no subject", nil, ObjectNLP, http.MethodPost, http.StatusForbidden},
		{"reader nlp post", &auth.AuthSubject{ID: "1", Roles: []string{"reader"}}, ObjectNLP, http.MethodPost, http.StatusOK},
		{"reader anomaly", &auth.AuthSubject{ID: "1", Roles: []string{"reader"}}, ObjectAnomaly, http.MethodGet, http.StatusForbidden},
		{"librarian anomaly", &auth.AuthSubject{ID: "2", Roles: []string{"librarian"}}, ObjectAnomaly, http.MethodGet, http.StatusOK},
		{"no roles uses default", &auth.AuthSubject{ID: "3"}, ObjectRecommendations, http.MethodGet, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/", nil)
			if tt.subject != nil {
				r = r.WithContext(auth.ContextWithSubject(r.Context(), tt.subject))
			}
			rec := httptest.NewRecorder()
			mw.Require(tt.object)(ok).ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMethodToAction(t *testing.T) {
	tests := map[string]string{
		http.MethodGet:    ActionRead,
		http.MethodHead:   ActionRead,
		http.MethodPost:   ActionWrite,
		http.MethodDelete: ActionWrite,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
