package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	betmock "github.com/riskibarqy/prediction-pool/internal/mocks/domain/bet"
	matchmock "github.com/riskibarqy/prediction-pool/internal/mocks/domain/match"
	playermock "github.com/riskibarqy/prediction-pool/internal/mocks/domain/player"
	"github.com/stretchr/testify/mock"
)

func TestSummaryService_Summary(t *testing.T) {
	t.Parallel()

	f := newPoolFixture()
	f.store.Seed(memory.SeedMatches(fixedNow), memory.SeedPlayers(fixedNow), nil)

	got := NewSummaryService(f.matches, f.bets, f.players, nil).Summary(context.Background())
	if got.Players != 2 || got.Bets != 0 {
		t.Fatalf("unexpected counters: players=%d bets=%d", got.Players, got.Bets)
	}
	if got.VisibleMatches != 3 || len(got.LastResults) != 1 {
		t.Fatalf("unexpected matches: visible=%d results=%d", got.VisibleMatches, len(got.LastResults))
	}
	if len(got.Degraded) != 0 {
		t.Fatalf("unexpected degraded parts: %v", got.Degraded)
	}
}

func TestSummaryService_Summary_DegradesPerPartUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	betRepo := betmock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)

	playerRepo.On("Count", mock.Anything).Return(4, nil).Once()
	betRepo.On("Count", mock.Anything).Return(0, errors.New("timeout")).Once()
	matchRepo.
		On("List", mock.Anything, match.ListFilter{VisibleOnly: true}).
		Return([]match.Match{{ID: "m-1"}, {ID: "m-2"}}, nil).
		Once()
	matchRepo.
		On("ListFinished", mock.Anything, LastResultsLimit).
		Return(nil, errors.New("timeout")).
		Once()

	got := NewSummaryService(matchRepo, betRepo, playerRepo, nil).Summary(context.Background())
	if got.Players != 4 || got.VisibleMatches != 2 || got.Bets != 0 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.LastResults == nil || len(got.LastResults) != 0 {
		t.Fatalf("expected empty, non-nil last results")
	}
	if len(got.Degraded) != 2 || got.Degraded[0] != "bets" || got.Degraded[1] != "last_results" {
		t.Fatalf("unexpected degraded parts: %v", got.Degraded)
	}
}
