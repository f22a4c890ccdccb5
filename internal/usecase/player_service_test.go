package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/session"
	playermock "github.com/riskibarqy/prediction-pool/internal/mocks/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

func newTestPlayerService(f *poolFixture, ranker player.RankingRecalculator) *PlayerService {
	svc := NewPlayerService(f.players, ranker, f.sessions, f.ids, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestPlayerService_Create_HashesAndRanks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	f.store.Seed(nil, []player.Player{testPlayer("p-1", "first@pool.local", fixedNow.Add(-time.Hour))}, nil)
	svc := newTestPlayerService(f, f.players)

	created, err := svc.Create(ctx, CreatePlayerInput{Name: "Новичок", Email: " New@Pool.Local ", Password: "pass123"})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if created.Email != "new@pool.local" || created.Role != player.RolePlayer {
		t.Fatalf("unexpected player: email=%q role=%s", created.Email, created.Role)
	}
	if !isBcryptHash(created.Password) || !verifyPassword(created.Password, "pass123") {
		t.Fatalf("expected a bcrypt hash of the password")
	}
	if created.RankPosition != 2 {
		t.Fatalf("expected the newcomer to rank after the earlier player, got %d", created.RankPosition)
	}

	_, err = svc.Create(ctx, CreatePlayerInput{Name: "Дубль", Email: "NEW@pool.local", Password: "x"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for a duplicate email, got %v", err)
	}
}

func TestPlayerService_Create_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input CreatePlayerInput
	}{
		{name: "missing name", input: CreatePlayerInput{Email: "a@pool.local", Password: "x"}},
		{name: "invalid email", input: CreatePlayerInput{Name: "A", Email: "not-an-email", Password: "x"}},
		{name: "missing password", input: CreatePlayerInput{Name: "A", Email: "a@pool.local", Password: "  "}},
		{name: "unknown role", input: CreatePlayerInput{Name: "A", Email: "a@pool.local", Password: "x", Role: "owner"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newPoolFixture()
			_, err := newTestPlayerService(f, f.players).Create(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPlayerService_Update_CountersAndRanking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	first := testPlayer("p-1", "a@pool.local", fixedNow)
	first.Points, first.CorrectPredictions, first.TotalPredictions = 6, 2, 4
	second := testPlayer("p-2", "b@pool.local", fixedNow.Add(time.Minute))
	f.store.Seed(nil, []player.Player{first, second}, nil)
	if err := f.players.RecalculateRankings(ctx); err != nil {
		t.Fatalf("seed rankings: %v", err)
	}
	svc := newTestPlayerService(f, f.players)

	updated, err := svc.Update(ctx, "p-2", UpdatePlayerInput{
		Points:             intPtr(9),
		CorrectPredictions: intPtr(3),
		TotalPredictions:   intPtr(3),
	})
	if err != nil {
		t.Fatalf("update player: %v", err)
	}
	if updated.RankPosition != 1 {
		t.Fatalf("expected p-2 to move to first place, got %d", updated.RankPosition)
	}

	_, err = svc.Update(ctx, "p-2", UpdatePlayerInput{CorrectPredictions: intPtr(5)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when correct exceeds total, got %v", err)
	}

	email := "a@pool.local"
	if _, err := svc.Update(ctx, "p-2", UpdatePlayerInput{Email: &email}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for a taken email, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", UpdatePlayerInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_Delete_RevokesSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	f.store.Seed(nil, []player.Player{testPlayer("p-1", "a@pool.local", fixedNow)}, nil)
	expires := time.Now().Add(time.Hour)
	if err := f.sessions.Save(ctx, session.Session{Token: "tok", PlayerID: "p-1", ExpiresAt: expires}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if err := newTestPlayerService(f, f.players).Delete(ctx, "p-1"); err != nil {
		t.Fatalf("delete player: %v", err)
	}
	if _, exists, _ := f.sessions.Load(ctx, "tok"); exists {
		t.Fatalf("expected the deleted player's session to be revoked")
	}
	if _, exists, _ := f.players.GetByID(ctx, "p-1"); exists {
		t.Fatalf("expected player to be deleted")
	}
}

func TestPlayerService_RecalculateRankings_CircuitOpen(t *testing.T) {
	t.Parallel()

	f := newPoolFixture()
	ranker := &failingRanker{err: resilience.ErrCircuitOpen}

	err := newTestPlayerService(f, ranker).RecalculateRankings(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if ranker.calls != 1 {
		t.Fatalf("unexpected ranker calls: %d", ranker.calls)
	}
}

func TestPlayerService_LeaderboardUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	playerRepo.
		On("List", mock.Anything).
		Return([]player.Player{
			{ID: "p-1", Points: 7, CorrectPredictions: 2, TotalPredictions: 3, RankPosition: 1},
			{ID: "p-2", RankPosition: 2},
		}, nil).
		Once()

	svc := NewPlayerService(playerRepo, &failingRanker{}, nil, nil, nil)
	got, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(got) != 2 || got[0].Accuracy != 67 || got[1].Accuracy != 0 {
		t.Fatalf("unexpected leaderboard: %+v", got)
	}
}
