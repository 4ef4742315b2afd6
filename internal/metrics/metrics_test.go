// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))

	RecordAPIRequest("GET", "/api/v1/test", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))
	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequestConcurrent(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("APIActiveRequests = %v, want %v", got, start)
	}
}

func TestRecordBackendRequest(t *testing.T) {
	tests := []struct {
		name      string
		errorType string
		wantDelta float64
	}{
		{"success", "", 0},
		{"unavailable", "unavailable", 1},
		{"malformed", "malformed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := tt.errorType
			if label == "" {
				label = "none"
			}
			before := testutil.ToFloat64(BackendRequestErrors.WithLabelValues("books", label))
			RecordBackendRequest("books", time.Millisecond, tt.errorType)
			after := testutil.ToFloat64(BackendRequestErrors.WithLabelValues("books", label))
			if after-before != tt.wantDelta {
				t.Errorf("error delta = %v, want %v", after-before, tt.wantDelta)
			}
		})
	}
}

func TestRecordAnomalyRunOnlyUpdatesGaugesOnSuccess(t *testing.T) {
	RecordAnomalyRun("ok", 40, 4, time.Millisecond)
	if got := testutil.ToFloat64(AnomalyPopulation); got != 40 {
		t.Errorf("AnomalyPopulation = %v, want 40", got)
	}

	RecordAnomalyRun("insufficient_data", 1, 0, 0)
	if got := testutil.ToFloat64(AnomalyPopulation); got != 40 {
		t.Errorf("AnomalyPopulation = %v after insufficient run, want 40", got)
	}
	if got := testutil.ToFloat64(AnomaliesDetected); got != 4 {
		t.Errorf("AnomaliesDetected = %v, want 4", got)
	}
}

func TestRecordVectorizerCache(t *testing.T) {
	hits := testutil.ToFloat64(VectorizerCacheHits)
	misses := testutil.ToFloat64(VectorizerCacheMisses)

	RecordVectorizerCache(true)
	RecordVectorizerCache(false)
	RecordVectorizerCache(false)

	if d := testutil.ToFloat64(VectorizerCacheHits) - hits; d != 1 {
		t.Errorf("hits delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(VectorizerCacheMisses) - misses; d != 2 {
		t.Errorf("misses delta = %v, want 2", d)
	}
}

func TestRecordEventPublish(t *testing.T) {
	ok := testutil.ToFloat64(EventsPublished.WithLabelValues("t"))
	failed := testutil.ToFloat64(EventPublishErrors.WithLabelValues("t"))

	RecordEventPublish("t", nil)
	RecordEventPublish("t", errors.New("broker down"))

	if d := testutil.ToFloat64(EventsPublished.WithLabelValues("t")) - ok; d != 1 {
		t.Errorf("published delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(EventPublishErrors.WithLabelValues("t")) - failed; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
}
