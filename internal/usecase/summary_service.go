package usecase

import (
	"context"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// Summary is the landing-page statistics block. Degraded lists the parts that
// could not be loaded and were returned empty.
type Summary struct {
	Players        int
	Bets           int
	VisibleMatches int
	LastResults    []match.Match
	Degraded       []string
}

type SummaryService struct {
	matchRepo  match.Repository
	betRepo    bet.Repository
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewSummaryService(matchRepo match.Repository, betRepo bet.Repository, playerRepo player.Repository, logger *logging.Logger) *SummaryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SummaryService{
		matchRepo:  matchRepo,
		betRepo:    betRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

// Summary loads every part concurrently. A failing part is logged and left
// empty; the call itself never fails.
func (s *SummaryService) Summary(ctx context.Context) Summary {
	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.Summary")
	defer span.End()

	var (
		out      Summary
		failures [4]error
	)

	p := pool.New().WithMaxGoroutines(len(failures))
	p.Go(func() {
		out.Players, failures[0] = s.playerRepo.Count(ctx)
	})
	p.Go(func() {
		out.Bets, failures[1] = s.betRepo.Count(ctx)
	})
	p.Go(func() {
		items, err := s.matchRepo.List(ctx, match.ListFilter{VisibleOnly: true})
		out.VisibleMatches, failures[2] = len(items), err
	})
	p.Go(func() {
		out.LastResults, failures[3] = s.matchRepo.ListFinished(ctx, LastResultsLimit)
	})
	p.Wait()

	parts := [4]string{"players", "bets", "visible_matches", "last_results"}
	for i, err := range failures {
		if err == nil {
			continue
		}
		s.logger.WarnContext(ctx, "summary part unavailable", "part", parts[i], "error", err)
		out.Degraded = append(out.Degraded, parts[i])
		switch i {
		case 0:
			out.Players = 0
		case 1:
			out.Bets = 0
		case 2:
			out.VisibleMatches = 0
		case 3:
			out.LastResults = nil
		}
	}
	if out.LastResults == nil {
		out.LastResults = []match.Match{}
	}
	return out
}
