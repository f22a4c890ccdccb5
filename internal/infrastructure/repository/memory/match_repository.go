package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) List(_ context.Context, filter match.ListFilter) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0, len(r.store.matches))
	for _, item := range r.store.matches {
		if filter.VisibleOnly && !item.IsVisible {
			continue
		}
		out = append(out, cloneMatch(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *MatchRepository) ListFinished(_ context.Context, limit int) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.store.matches {
		if item.HasFinalScore() {
			out = append(out, cloneMatch(item))
		}
	}
	// Stored dates and times are zero padded, so string order is chronological.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchDate != out[j].MatchDate {
			return out[i].MatchDate > out[j].MatchDate
		}
		if out[i].MatchTime != out[j].MatchTime {
			return out[i].MatchTime > out[j].MatchTime
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}

	return cloneMatch(item), true, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[item.ID]; exists {
		return fmt.Errorf("create match id=%s: already exists", item.ID)
	}
	r.store.matches[item.ID] = cloneMatch(item)
	return nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[item.ID]; !exists {
		return fmt.Errorf("update match id=%s: not found", item.ID)
	}
	r.store.matches[item.ID] = cloneMatch(item)
	return nil
}

// Delete removes the match together with its bets.
func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[matchID]; !exists {
		return fmt.Errorf("delete match id=%s: not found", matchID)
	}
	delete(r.store.matches, matchID)
	for id, item := range r.store.bets {
		if item.MatchID == matchID {
			delete(r.store.bets, id)
		}
	}
	return nil
}
