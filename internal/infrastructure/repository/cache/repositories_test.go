package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/prediction-pool/internal/platform/cache"
)

type countingMatchRepository struct {
	match.Repository
	getCalls int
}

func (r *countingMatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	r.getCalls++
	return r.Repository.GetByID(ctx, matchID)
}

func TestMatchRepository_CachesUntilWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed([]match.Match{{ID: "m1", HomeTeam: "A", AwayTeam: "B", Status: match.StatusUpcoming}}, nil, nil)

	inner := &countingMatchRepository{Repository: memory.NewMatchRepository(store)}
	repo := NewMatchRepository(inner, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		if _, ok, err := repo.GetByID(ctx, "m1"); err != nil || !ok {
			t.Fatalf("get match: ok=%v err=%v", ok, err)
		}
	}
	if inner.getCalls != 1 {
		t.Fatalf("expected 1 backend call, got %d", inner.getCalls)
	}

	item, _, _ := repo.GetByID(ctx, "m1")
	item.HomeTeam = "Renamed"
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("update match: %v", err)
	}

	got, _, err := repo.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("get match after update: %v", err)
	}
	if got.HomeTeam != "Renamed" || inner.getCalls != 2 {
		t.Fatalf("expected fresh read after update, got %q calls=%d", got.HomeTeam, inner.getCalls)
	}
}

func TestSettlementRepository_InvalidatesPlayersAndMatches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(
		[]match.Match{{ID: "m1", HomeTeam: "A", AwayTeam: "B", Status: match.StatusUpcoming}},
		[]player.Player{{ID: "p1", Name: "Anna", Email: "anna@example.com"}},
		nil,
	)

	shared := basecache.NewStore(time.Minute)
	matches := NewMatchRepository(memory.NewMatchRepository(store), shared)
	players := NewPlayerRepository(memory.NewPlayerRepository(store), shared)
	settlements := NewSettlementRepository(memory.NewSettlementRepository(store), shared)

	if _, _, err := matches.GetByID(ctx, "m1"); err != nil {
		t.Fatalf("prime match cache: %v", err)
	}
	if _, err := players.List(ctx); err != nil {
		t.Fatalf("prime player cache: %v", err)
	}

	if _, err := settlements.Apply(ctx, settlement.Result{MatchID: "m1", HomeScore: 1, AwayScore: 0}); err != nil {
		t.Fatalf("apply settlement: %v", err)
	}

	got, _, err := matches.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !got.HasFinalScore() {
		t.Fatalf("expected cached match to be refreshed after settlement, got %+v", got)
	}
}
