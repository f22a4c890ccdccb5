package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
)

type SettlementRepository struct {
	store *Store
	now   func() time.Time
}

func NewSettlementRepository(store *Store) *SettlementRepository {
	return &SettlementRepository{store: store, now: time.Now}
}

func (r *SettlementRepository) Apply(_ context.Context, result settlement.Result) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.matches[result.MatchID]
	if !ok {
		return 0, fmt.Errorf("settle match=%s: not found", result.MatchID)
	}
	now := r.now().UTC()
	home, away := result.HomeScore, result.AwayScore
	m.HomeScore = &home
	m.AwayScore = &away
	m.Status = match.StatusFinished
	m.UpdatedAt = now
	r.store.matches[m.ID] = m

	applied := 0
	for _, item := range result.Bets {
		b, ok := r.store.bets[item.BetID]
		if !ok || b.MatchID != result.MatchID || b.IsCalculated {
			continue
		}
		points := item.Points
		b.PointsEarned = &points
		b.IsCalculated = true
		b.UpdatedAt = now
		r.store.bets[b.ID] = b

		if p, ok := r.store.players[item.PlayerID]; ok {
			p.Points += item.Points
			p.TotalPredictions++
			if bet.IsCorrect(item.Points) {
				p.CorrectPredictions++
			}
			p.UpdatedAt = now
			r.store.players[p.ID] = p
		}
		applied++
	}

	return applied, nil
}
