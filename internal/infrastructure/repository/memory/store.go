package memory

import (
	"sync"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
)

// Store holds every table behind one lock so cascades and settlements stay
// atomic, the way a single database would keep them.
type Store struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	players map[string]player.Player
	bets    map[string]bet.Bet
}

func NewStore() *Store {
	return &Store{
		matches: make(map[string]match.Match),
		players: make(map[string]player.Player),
		bets:    make(map[string]bet.Bet),
	}
}

// Seed loads fixtures; it overwrites records with the same id.
func (s *Store) Seed(matches []match.Match, players []player.Player, bets []bet.Bet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range matches {
		s.matches[item.ID] = cloneMatch(item)
	}
	for _, item := range players {
		s.players[item.ID] = item
	}
	for _, item := range bets {
		s.bets[item.ID] = cloneBet(item)
	}
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	copied.Tour = cloneInt(m.Tour)
	copied.HomeScore = cloneInt(m.HomeScore)
	copied.AwayScore = cloneInt(m.AwayScore)
	return copied
}

func cloneBet(b bet.Bet) bet.Bet {
	copied := b
	copied.PointsEarned = cloneInt(b.PointsEarned)
	return copied
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
