package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
)

type BetRepository struct {
	store *Store
}

func NewBetRepository(store *Store) *BetRepository {
	return &BetRepository{store: store}
}

func (r *BetRepository) GetByPlayerAndMatch(_ context.Context, playerID, matchID string) (bet.Bet, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.findLocked(playerID, matchID)
	if !ok {
		return bet.Bet{}, false, nil
	}
	return cloneBet(item), true, nil
}

// Upsert keeps the first id and created_at for a (player, match) pair and
// leaves calculated bets untouched.
func (r *BetRepository) Upsert(_ context.Context, item bet.Bet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.findLocked(item.PlayerID, item.MatchID)
	if !ok {
		r.store.bets[item.ID] = cloneBet(item)
		return nil
	}
	if current.IsCalculated {
		return nil
	}

	current.PredictedHomeScore = item.PredictedHomeScore
	current.PredictedAwayScore = item.PredictedAwayScore
	current.UpdatedAt = item.UpdatedAt
	r.store.bets[current.ID] = current
	return nil
}

func (r *BetRepository) List(_ context.Context, filter bet.ListFilter) ([]bet.Bet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]bet.Bet, 0)
	for _, item := range r.store.bets {
		if filter.PlayerID != "" && item.PlayerID != filter.PlayerID {
			continue
		}
		if filter.MatchID != "" && item.MatchID != filter.MatchID {
			continue
		}
		if filter.UncalculatedOnly && item.IsCalculated {
			continue
		}
		out = append(out, cloneBet(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *BetRepository) Count(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.bets), nil
}

func (r *BetRepository) findLocked(playerID, matchID string) (bet.Bet, bool) {
	for _, item := range r.store.bets {
		if item.PlayerID == playerID && item.MatchID == matchID {
			return item, true
		}
	}
	return bet.Bet{}, false
}
