package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
)

type stubRecalculator struct {
	calls int
	err   error
}

func (s *stubRecalculator) RecalculateRankings(context.Context) error {
	s.calls++
	return s.err
}

func TestGuardedRecalculator_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	stub := &stubRecalculator{err: errors.New("connection refused")}
	guard := NewGuardedRecalculator(stub, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, logging.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := guard.RecalculateRankings(ctx); err == nil {
			t.Fatalf("expected backend error on call %d", i+1)
		}
	}
	if guard.State() != resilience.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", guard.State())
	}

	err := guard.RecalculateRankings(ctx)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected open circuit to skip backend, calls=%d", stub.calls)
	}
}

func TestGuardedRecalculator_CanceledDoesNotTrip(t *testing.T) {
	t.Parallel()

	stub := &stubRecalculator{err: context.Canceled}
	guard := NewGuardedRecalculator(stub, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, logging.NewNop())

	_ = guard.RecalculateRankings(context.Background())
	if guard.State() != resilience.CircuitStateClosed {
		t.Fatalf("expected closed circuit after cancellation, got %s", guard.State())
	}
}

func TestGuardedRecalculator_Disabled(t *testing.T) {
	t.Parallel()

	stub := &stubRecalculator{err: errors.New("boom")}
	guard := NewGuardedRecalculator(stub, resilience.CircuitBreakerConfig{Enabled: false}, logging.NewNop())

	for i := 0; i < 5; i++ {
		_ = guard.RecalculateRankings(context.Background())
	}
	if stub.calls != 5 {
		t.Fatalf("expected every call to reach backend, calls=%d", stub.calls)
	}
}
