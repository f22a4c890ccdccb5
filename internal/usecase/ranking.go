package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
)

// recalculateRankings runs the ranking procedure and maps an open circuit to
// ErrDependencyUnavailable.
func recalculateRankings(ctx context.Context, ranker player.RankingRecalculator) error {
	if err := ranker.RecalculateRankings(ctx); err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return fmt.Errorf("%w: ranking recalculation: %v", ErrDependencyUnavailable, err)
		}
		return fmt.Errorf("recalculate rankings: %w", err)
	}
	return nil
}
