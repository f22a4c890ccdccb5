package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/session"
)

// fixedNow is 12:00 Moscow time on 1 May 2024.
var fixedNow = time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

func (g *sequenceIDGenerator) NewToken() (string, error) {
	return g.NewID()
}

type failingRanker struct {
	err   error
	calls int
}

func (r *failingRanker) RecalculateRankings(context.Context) error {
	r.calls++
	return r.err
}

type poolFixture struct {
	store       *memory.Store
	matches     *memory.MatchRepository
	players     *memory.PlayerRepository
	bets        *memory.BetRepository
	settlements *memory.SettlementRepository
	sessions    *session.MemoryStore
	ids         *sequenceIDGenerator
}

func newPoolFixture() *poolFixture {
	store := memory.NewStore()
	return &poolFixture{
		store:       store,
		matches:     memory.NewMatchRepository(store),
		players:     memory.NewPlayerRepository(store),
		bets:        memory.NewBetRepository(store),
		settlements: memory.NewSettlementRepository(store),
		sessions:    session.NewMemoryStore(100),
		ids:         &sequenceIDGenerator{prefix: "id"},
	}
}

func (f *poolFixture) betService() *BetService {
	svc := NewBetService(f.matches, f.bets, f.players, f.ids, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *poolFixture) settlementService() *SettlementService {
	return NewSettlementService(f.matches, f.bets, f.settlements, f.players, 2, nil)
}

func intPtr(v int) *int { return &v }

func upcomingMatch(id, date, clock string) match.Match {
	return match.Match{
		ID:        id,
		HomeTeam:  "Зенит",
		AwayTeam:  "Спартак",
		MatchDate: date,
		MatchTime: clock,
		League:    match.DefaultLeague,
		Tour:      intPtr(1),
		Status:    match.StatusUpcoming,
		IsVisible: true,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func testPlayer(id, email string, createdAt time.Time) player.Player {
	return player.Player{
		ID:        id,
		Name:      "Игрок " + id,
		Email:     email,
		Password:  "secret",
		Role:      player.RolePlayer,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func openBet(id, playerID, matchID string, home, away int) bet.Bet {
	return bet.Bet{
		ID:                 id,
		PlayerID:           playerID,
		MatchID:            matchID,
		PredictedHomeScore: home,
		PredictedAwayScore: away,
		CreatedAt:          fixedNow,
		UpdatedAt:          fixedNow,
	}
}
