package proxyfix

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type mockMetrics struct {
	mu                sync.Mutex
	resolutions       map[string]int
	misconfigurations map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		resolutions:       make(map[string]int),
		misconfigurations: make(map[string]int),
	}
}

func (m *mockMetrics) RecordResolution(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions[outcome]++
}

func (m *mockMetrics) RecordMisconfiguration(cause string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misconfigurations[cause]++
}

func (m *mockMetrics) getResolutionCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolutions[outcome]
}

func (m *mockMetrics) getMisconfigurationCount(cause string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misconfigurations[cause]
}

func TestMetrics_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		xff         string
		wantOutcome string
		wantCause   string
	}{
		{
			name:        "rewritten",
			xff:         "1.1.1.1",
			wantOutcome: OutcomeRewritten,
		},
		{
			name:        "unchanged without proxy",
			wantOutcome: OutcomeUnchanged,
			wantCause:   CauseNoProxyDetected,
		},
		{
			name:        "unchanged with short chain",
			opts:        []Option{TrustedProxyCount(2)},
			xff:         "1.1.1.1",
			wantOutcome: OutcomeUnchanged,
			wantCause:   CauseInsufficientProxyHops,
		},
		{
			name:        "rejected without proxy",
			opts:        []Option{Strict()},
			wantOutcome: OutcomeRejected,
			wantCause:   CauseNoProxyDetected,
		},
		{
			name:        "rejected with short chain",
			opts:        []Option{TrustedProxyCount(3), Strict()},
			xff:         "1.1.1.1, 2.2.2.2",
			wantOutcome: OutcomeRejected,
			wantCause:   CauseInsufficientProxyHops,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newMockMetrics()
			mw := mustNewMiddleware(t, append(tt.opts, WithMetrics(metrics))...)

			h := headersWith()
			if tt.xff != "" {
				h.Set("X-Forwarded-For", tt.xff)
			}
			_, _ = mw.Apply(context.Background(), &RequestContext{}, h)

			if got := metrics.getResolutionCount(tt.wantOutcome); got != 1 {
				t.Errorf("resolution %q count = %d, want 1", tt.wantOutcome, got)
			}

			for _, cause := range []string{CauseNoProxyDetected, CauseInsufficientProxyHops} {
				want := 0
				if cause == tt.wantCause {
					want = 1
				}
				if got := metrics.getMisconfigurationCount(cause); got != want {
					t.Errorf("misconfiguration %q count = %d, want %d", cause, got, want)
				}
			}
		})
	}
}

func TestMetrics_Factory(t *testing.T) {
	metrics := newMockMetrics()
	calls := 0

	mw := mustNewMiddleware(t, WithMetricsFactory(func() (Metrics, error) {
		calls++
		return metrics, nil
	}))

	if calls != 1 {
		t.Fatalf("factory calls = %d, want 1", calls)
	}

	_, _ = mw.Apply(context.Background(), &RequestContext{}, headersWith("X-Forwarded-For", "1.1.1.1"))
	if got := metrics.getResolutionCount(OutcomeRewritten); got != 1 {
		t.Fatalf("rewritten count = %d, want 1", got)
	}
}

func TestMetrics_FactoryNotCalledForInvalidConfig(t *testing.T) {
	calls := 0

	_, err := New(
		TrustedProxyCount(-1),
		WithMetricsFactory(func() (Metrics, error) {
			calls++
			return newMockMetrics(), nil
		}),
	)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if calls != 0 {
		t.Fatalf("factory calls = %d, want 0", calls)
	}
}

func TestMetrics_FactoryError(t *testing.T) {
	factoryErr := errors.New("factory failed")

	_, err := New(WithMetricsFactory(func() (Metrics, error) {
		return nil, factoryErr
	}))
	if !errors.Is(err, factoryErr) {
		t.Fatalf("error = %v, want factory error", err)
	}
}

func TestMetrics_FactoryReturnsNil(t *testing.T) {
	_, err := New(WithMetricsFactory(func() (Metrics, error) {
		return nil, nil
	}))
	if err == nil {
		t.Fatal("expected error for nil metrics from factory")
	}
}

func TestMetrics_WithMetricsOverridesFactory(t *testing.T) {
	metrics := newMockMetrics()
	calls := 0

	mw := mustNewMiddleware(t,
		WithMetricsFactory(func() (Metrics, error) {
			calls++
			return newMockMetrics(), nil
		}),
		WithMetrics(metrics),
	)

	if calls != 0 {
		t.Fatalf("factory calls = %d, want 0", calls)
	}

	_, _ = mw.Apply(context.Background(), &RequestContext{}, headersWith("X-Forwarded-For", "1.1.1.1"))
	if got := metrics.getResolutionCount(OutcomeRewritten); got != 1 {
		t.Fatalf("rewritten count = %d, want 1", got)
	}
}
