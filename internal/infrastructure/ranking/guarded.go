package ranking

import (
	"context"
	"errors"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
)

// GuardedRecalculator puts the recalculate_rankings call behind a circuit
// breaker. While the circuit is open calls fail fast with resilience.ErrCircuitOpen.
type GuardedRecalculator struct {
	next    player.RankingRecalculator
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewGuardedRecalculator(next player.RankingRecalculator, cfg resilience.CircuitBreakerConfig, logger *logging.Logger) *GuardedRecalculator {
	if logger == nil {
		logger = logging.Default()
	}

	g := &GuardedRecalculator{next: next, logger: logger}
	if cfg.Enabled {
		g.breaker = resilience.NewCircuitBreaker(cfg)
		g.breaker.IsFailure = countsAsFailure
		g.breaker.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("ranking circuit state changed", "from", string(from), "to", string(to))
		}
	}
	return g
}

func (g *GuardedRecalculator) RecalculateRankings(ctx context.Context) error {
	if g.breaker == nil {
		return g.next.RecalculateRankings(ctx)
	}

	err := g.breaker.Do(ctx, g.next.RecalculateRankings)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		g.logger.WarnContext(ctx, "ranking recalculation rejected by open circuit")
	}
	return err
}

// State reports the breaker state; it is closed when the breaker is disabled.
func (g *GuardedRecalculator) State() resilience.CircuitState {
	if g.breaker == nil {
		return resilience.CircuitStateClosed
	}
	return g.breaker.State()
}

func countsAsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}
