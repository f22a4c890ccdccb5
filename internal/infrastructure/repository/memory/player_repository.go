package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0, len(r.store.players))
	for _, item := range r.store.players {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RankPosition != out[j].RankPosition {
			return out[i].RankPosition < out[j].RankPosition
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.players[playerID]
	return item, ok, nil
}

func (r *PlayerRepository) GetByEmail(_ context.Context, email string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, item := range r.store.players {
		if strings.ToLower(item.Email) == email {
			return item, true, nil
		}
	}

	return player.Player{}, false, nil
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.players[item.ID]; exists {
		return fmt.Errorf("create player id=%s: already exists", item.ID)
	}
	if r.emailTakenLocked(item.Email, item.ID) {
		return player.ErrEmailTaken
	}
	r.store.players[item.ID] = item
	return nil
}

func (r *PlayerRepository) Update(_ context.Context, item player.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.players[item.ID]
	if !exists {
		return fmt.Errorf("update player id=%s: not found", item.ID)
	}
	if r.emailTakenLocked(item.Email, item.ID) {
		return player.ErrEmailTaken
	}
	// rank_position is owned by RecalculateRankings.
	item.RankPosition = current.RankPosition
	r.store.players[item.ID] = item
	return nil
}

// Delete removes the player together with their bets.
func (r *PlayerRepository) Delete(_ context.Context, playerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.players[playerID]; !exists {
		return fmt.Errorf("delete player id=%s: not found", playerID)
	}
	delete(r.store.players, playerID)
	for id, item := range r.store.bets {
		if item.PlayerID == playerID {
			delete(r.store.bets, id)
		}
	}
	return nil
}

func (r *PlayerRepository) Count(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.players), nil
}

func (r *PlayerRepository) RecalculateRankings(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := make([]player.Player, 0, len(r.store.players))
	for _, item := range r.store.players {
		items = append(items, item)
	}
	player.AssignRanks(items)
	for _, item := range items {
		r.store.players[item.ID] = item
	}
	return nil
}

func (r *PlayerRepository) emailTakenLocked(email, exceptID string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for id, item := range r.store.players {
		if id != exceptID && strings.ToLower(item.Email) == email {
			return true
		}
	}
	return false
}
