// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package detection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/library/librarytest"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testDay = 24 * time.Hour

// recordingNotifier captures deliveries for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	anomalies []string
	risks     []RiskLevel
	err       error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) NotifyAnomaly(_ context.Context, r *AnomalyResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.anomalies = append(n.anomalies, r.UserID)
	return n.err
}

func (n *recordingNotifier) NotifyRisk(_ context.Context, a *RiskAssessment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.risks = append(n.risks, a.RiskLevel)
	return n.err
}

func newTestEngine(t *testing.T, cfg EngineConfig, src library.Source) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, src, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.now = func() time.Time { return testNow }
	return e
}

// riskScenarioSource holds one reader with 10 borrowings: 2 overdue by 10
// days, 3 returned late by 5, 5 and 10 days, 5 returned on the due date,
// and 15,000 VND of pending fines.
func riskScenarioSource() *librarytest.Source {
	src := &librarytest.Source{
		Users: []library.User{{ID: "R1", Email: "r1@example.com", Role: library.RoleReader, CurrentBorrowCount: 2}},
		Fines: []library.Fine{
			{ID: "F1", UserID: "R1", Amount: 10000, Status: library.FinePending},
			{ID: "F2", UserID: "R1", Amount: 5000, Status: library.FinePending},
			{ID: "F3", UserID: "R1", Amount: 99999, Status: library.FinePaid},
		},
	}
	add := func(status string, due time.Time, returned *time.Time) {
		n := len(src.Borrowings) + 1
		src.Borrowings = append(src.Borrowings, library.Borrowing{
			ID: fmt.Sprintf("BR%d", n), UserID: "R1", BookID: fmt.Sprintf("B%d", n),
			Status: status, BorrowDate: due.Add(-14 * testDay), DueDate: due,
			ReturnDate: returned, CreatedAt: due.Add(-14 * testDay),
		})
	}
	at := func(t time.Time) *time.Time { return &t }

	for i := 0; i < 2; i++ {
		add(library.StatusOverdue, testNow.Add(-10*testDay), nil)
	}
	for _, late := range []int{5, 5, 10} {
		due := testNow.Add(-60 * testDay)
		add(library.StatusReturned, due, at(due.Add(time.Duration(late)*testDay)))
	}
	for i := 0; i < 5; i++ {
		due := testNow.Add(-90 * testDay)
		add(library.StatusReturned, due, at(due))
	}
	return src
}

func TestNewEngineValidation(t *testing.T) {
	src := &librarytest.Source{}
	bad := DefaultEngineConfig()
	bad.Anomaly.Contamination = 0.9
	badLevel := DefaultEngineConfig()
	badLevel.NotifyLevel = "Severe"

	tests := []struct {
		name string
		cfg  EngineConfig
		src  library.Source
	}{
		{"nil source", DefaultEngineConfig(), nil},
		{"contamination out of range", bad, src},
		{"unknown notify level", badLevel, src},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.cfg, tt.src, zerolog.New(io.Discard)); err == nil {
				t.Error("NewEngine() error = nil, want error")
			}
		})
	}
}

func TestEngineConfigFrom(t *testing.T) {
	cfg := EngineConfigFrom(&config.DetectionConfig{
		Contamination: 0.2, Trees: 50, MaxSamples: 64, Seed: 9,
		PopulationRole: "librarian", UserLimit: 500,
	}, "Critical")

	if cfg.Anomaly.Contamination != 0.2 || cfg.Anomaly.Forest.Trees != 50 ||
		cfg.Anomaly.Forest.MaxSamples != 64 || cfg.Anomaly.Forest.Seed != 9 {
		t.Errorf("anomaly config = %+v", cfg.Anomaly)
	}
	if cfg.PopulationRole != "librarian" || cfg.UserLimit != 500 {
		t.Errorf("population = %q/%d", cfg.PopulationRole, cfg.UserLimit)
	}
	if cfg.NotifyLevel != RiskCritical {
		t.Errorf("NotifyLevel = %q", cfg.NotifyLevel)
	}

	if def := EngineConfigFrom(nil, ""); def.NotifyLevel != RiskHigh || def.PopulationRole != library.RoleReader {
		t.Errorf("defaults = %+v", def)
	}
}

func TestComputeUserRiskScenario(t *testing.T) {
	e := newTestEngine(t, DefaultEngineConfig(), riskScenarioSource())

	a, err := e.ComputeUserRisk(context.Background(), "R1")
	if err != nil {
		t.Fatalf("ComputeUserRisk() error = %v", err)
	}
	if a.RiskScore != 44.5 || a.RiskLevel != RiskMedium {
		t.Errorf("risk = %v %q, want 44.5 Medium", a.RiskScore, a.RiskLevel)
	}
	want := RiskMetrics{
		TotalBorrowings: 10, CurrentBorrowings: 2, OverdueCount: 2,
		LateReturns: 3, UnpaidFines: 15000, AvgDaysLate: 4,
	}
	if a.Metrics != want {
		t.Errorf("metrics = %+v, want %+v", a.Metrics, want)
	}
	if a.Email != "r1@example.com" {
		t.Errorf("email = %q", a.Email)
	}
}

func TestComputeUserRiskErrors(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		e := newTestEngine(t, DefaultEngineConfig(), riskScenarioSource())
		_, err := e.ComputeUserRisk(context.Background(), "nobody")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("backend unavailable", func(t *testing.T) {
		src := &librarytest.Source{Err: fmt.Errorf("%w: connection refused", library.ErrUpstreamUnavailable)}
		e := newTestEngine(t, DefaultEngineConfig(), src)
		_, err := e.ComputeUserRisk(context.Background(), "R1")
		if !library.IsUnavailable(err) {
			t.Errorf("error = %v, want upstream unavailable", err)
		}
	})
}

func TestComputeUserRiskNotifiesAtLevel(t *testing.T) {
	tests := []struct {
		name  string
		level RiskLevel
		want  int
	}{
		{"below threshold", RiskHigh, 0},
		{"at threshold", RiskMedium, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			cfg.NotifyLevel = tt.level
			e := newTestEngine(t, cfg, riskScenarioSource())
			n := &recordingNotifier{}
			e.RegisterNotifier(n)

			if _, err := e.ComputeUserRisk(context.Background(), "R1"); err != nil {
				t.Fatalf("ComputeUserRisk() error = %v", err)
			}
			if len(n.risks) != tt.want {
				t.Errorf("notifications = %d, want %d", len(n.risks), tt.want)
			}
		})
	}
}

// populationSource has 20 ordinary readers, one heavy reader, a librarian
// and a reader who never borrowed.
func populationSource() *librarytest.Source {
	src := &librarytest.Source{}
	add := func(user string, n int, status string, due time.Time) {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("%s-%d", user, len(src.Borrowings))
			var returned *time.Time
			if status == library.StatusReturned {
				r := due.Add(-time.Duration(i%3) * testDay)
				returned = &r
			}
			src.Borrowings = append(src.Borrowings, library.Borrowing{
				ID: id, UserID: user, BookID: "B" + id, Status: status,
				BorrowDate: due.Add(-14 * testDay), DueDate: due, ReturnDate: returned,
				CreatedAt: due.Add(-14 * testDay),
			})
		}
	}

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("U%02d", i)
		src.Users = append(src.Users, library.User{ID: id, Email: id + "@example.com", Role: library.RoleReader})
		add(id, 4+i%5, library.StatusReturned, testNow.Add(-time.Duration(30+i)*testDay))
		if i%2 == 0 {
			add(id, 1, library.StatusActive, testNow.Add(7*testDay))
		}
	}

	src.Users = append(src.Users,
		library.User{ID: "HEAVY", Email: "heavy@example.com", Role: library.RoleReader},
		library.User{ID: "STAFF", Role: library.RoleLibrarian},
		library.User{ID: "IDLE", Role: library.RoleReader},
	)
	add("HEAVY", 150, library.StatusReturned, testNow.Add(-100*testDay))
	add("HEAVY", 15, library.StatusActive, testNow.Add(3*testDay))
	add("HEAVY", 12, library.StatusOverdue, testNow.Add(-40*testDay))
	add("STAFF", 300, library.StatusOverdue, testNow.Add(-40*testDay))
	src.Fines = []library.Fine{
		{ID: "F1", UserID: "HEAVY", Amount: 400000, Status: library.FinePending},
		{ID: "F2", UserID: "STAFF", Amount: 900000, Status: library.FinePending},
	}
	return src
}

func TestDetectAnomalousUsers(t *testing.T) {
	e := newTestEngine(t, DefaultEngineConfig(), populationSource())
	n := &recordingNotifier{}
	e.RegisterNotifier(n)

	report, err := e.DetectAnomalousUsers(context.Background())
	if err != nil {
		t.Fatalf("DetectAnomalousUsers() error = %v", err)
	}
	// Readers with borrowings only: U00..U19 and HEAVY.
	if report.TotalUsersAnalyzed != 21 {
		t.Errorf("TotalUsersAnalyzed = %d, want 21", report.TotalUsersAnalyzed)
	}
	if report.Degraded || report.InsufficientData {
		t.Errorf("report flags = degraded %v insufficient %v", report.Degraded, report.InsufficientData)
	}
	if !report.GeneratedAt.Equal(testNow) {
		t.Errorf("GeneratedAt = %v", report.GeneratedAt)
	}

	var heavy *AnomalyResult
	for i := range report.Anomalies {
		switch report.Anomalies[i].UserID {
		case "HEAVY":
			heavy = &report.Anomalies[i]
		case "STAFF", "IDLE":
			t.Errorf("%s must not be analysed", report.Anomalies[i].UserID)
		}
	}
	if heavy == nil {
		t.Fatalf("HEAVY not flagged: %+v", report.Anomalies)
	}
	if heavy.Metrics.TotalBorrowings != 177 || heavy.Metrics.TotalFines != 400000 {
		t.Errorf("heavy metrics = %+v", heavy.Metrics)
	}
	if len(n.anomalies) != report.AnomaliesDetected {
		t.Errorf("notified %d anomalies, report has %d", len(n.anomalies), report.AnomaliesDetected)
	}
}

func TestDetectAnomalousUsersInsufficientData(t *testing.T) {
	src := populationSource()
	src.Users = src.Users[20:] // HEAVY, STAFF, IDLE: one eligible reader
	e := newTestEngine(t, DefaultEngineConfig(), src)

	report, err := e.DetectAnomalousUsers(context.Background())
	if err != nil {
		t.Fatalf("DetectAnomalousUsers() error = %v", err)
	}
	if !report.InsufficientData || report.Message != InsufficientDataMessage {
		t.Errorf("report = %+v, want insufficient data", report)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("Anomalies = %v", report.Anomalies)
	}
}

func TestDetectAnomalousUsersBackendFailures(t *testing.T) {
	t.Run("unavailable degrades", func(t *testing.T) {
		src := &librarytest.Source{Err: fmt.Errorf("%w: status 502", library.ErrUpstreamUnavailable)}
		e := newTestEngine(t, DefaultEngineConfig(), src)
		report, err := e.DetectAnomalousUsers(context.Background())
		if err != nil {
			t.Fatalf("DetectAnomalousUsers() error = %v", err)
		}
		if !report.Degraded || report.Anomalies == nil || len(report.Anomalies) != 0 {
			t.Errorf("report = %+v, want degraded empty", report)
		}
	})

	t.Run("other errors surface", func(t *testing.T) {
		src := &librarytest.Source{Err: errors.New("decode failure")}
		e := newTestEngine(t, DefaultEngineConfig(), src)
		if _, err := e.DetectAnomalousUsers(context.Background()); err == nil {
			t.Error("DetectAnomalousUsers() error = nil, want error")
		}
	})
}

func TestNotifierFailureDoesNotFailRequest(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.NotifyLevel = RiskLow
	e := newTestEngine(t, cfg, riskScenarioSource())
	n := &recordingNotifier{err: errors.New("broker down")}
	e.RegisterNotifier(n)

	if _, err := e.ComputeUserRisk(context.Background(), "R1"); err != nil {
		t.Fatalf("ComputeUserRisk() error = %v", err)
	}
	if len(n.risks) != 1 {
		t.Errorf("notifications = %d, want 1", len(n.risks))
	}
}
