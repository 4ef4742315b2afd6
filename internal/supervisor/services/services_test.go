// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/logging"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*EventRouterService)(nil)
	_ suture.Service = (*AnomalyScanService)(nil)
)

// mockHTTPServer is a test double for HTTPServer.
type mockHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stopCh      chan struct{}
	shutdowns   atomic.Int32
	once        sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	close(m.started)
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.once.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		srv := newMockHTTPServer()
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		<-srv.started
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address in use")
		err := NewHTTPServerService(srv, time.Second).Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "address in use") {
			t.Errorf("Serve() error = %v", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.shutdownErr = errors.New("timeout")
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		<-srv.started
		cancel()
		if err := <-done; err == nil || !strings.Contains(err.Error(), "shutdown failed") {
			t.Errorf("Serve() error = %v", err)
		}
	})

	if got := NewHTTPServerService(newMockHTTPServer(), 0).shutdownTimeout; got != 10*time.Second {
		t.Errorf("default timeout = %v", got)
	}
}

type fakeRouter struct {
	err error
}

func (f fakeRouter) Run(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func TestEventRouterService(t *testing.T) {
	boom := errors.New("subscriber closed")
	if err := NewEventRouterService(fakeRouter{err: boom}).Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve() error = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewEventRouterService(fakeRouter{}).Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

type fakeScanner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeScanner) DetectAnomalousUsers(context.Context) (*detection.AnomalyReport, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &detection.AnomalyReport{TotalUsersAnalyzed: 12, AnomaliesDetected: 1}, nil
}

func TestAnomalyScanService(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog string
	}{
		{"success", nil, "scheduled anomaly scan complete"},
		{"failure", errors.New("backend exploded"), "scheduled anomaly scan failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			scanner := &fakeScanner{err: tt.err}
			svc := NewAnomalyScanService(scanner, 10*time.Millisecond, logging.NewTestLogger(&buf))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			deadline := time.Now().Add(2 * time.Second)
			for scanner.calls.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v", err)
			}
			if scanner.calls.Load() < 2 {
				t.Errorf("scans = %d, want at least 2", scanner.calls.Load())
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log missing %q: %s", tt.wantLog, buf.String())
			}
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
