package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const defaultSettlementWorkers = 4

type SettleMatchResult struct {
	MatchID     string `json:"match_id"`
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	BetsApplied int    `json:"bets_applied"`
}

type SettlementReport struct {
	Matches int `json:"matches"`
	Bets    int `json:"bets"`
	Failed  int `json:"failed"`
}

type SettlementService struct {
	matchRepo      match.Repository
	betRepo        bet.Repository
	settlementRepo settlement.Repository
	ranker         player.RankingRecalculator
	workers        int
	logger         *logging.Logger
}

func NewSettlementService(
	matchRepo match.Repository,
	betRepo bet.Repository,
	settlementRepo settlement.Repository,
	ranker player.RankingRecalculator,
	workers int,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultSettlementWorkers
	}

	return &SettlementService{
		matchRepo:      matchRepo,
		betRepo:        betRepo,
		settlementRepo: settlementRepo,
		ranker:         ranker,
		workers:        workers,
		logger:         logger,
	}
}

// SettleMatch records the final score, scores every open bet on the match and
// refreshes the rankings.
func (s *SettlementService) SettleMatch(ctx context.Context, matchID string, homeScore, awayScore int) (SettleMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleMatch")
	defer span.End()

	result, err := s.settle(ctx, matchID, homeScore, awayScore)
	if err != nil {
		return SettleMatchResult{}, err
	}
	if err := recalculateRankings(ctx, s.ranker); err != nil {
		return SettleMatchResult{}, err
	}
	return result, nil
}

// SettleFinished settles every finished match that still has open bets, in
// parallel on a bounded worker pool, and recalculates rankings once at the end.
func (s *SettlementService) SettleFinished(ctx context.Context) (SettlementReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleFinished")
	defer span.End()

	matches, err := s.matchRepo.List(ctx, match.ListFilter{})
	if err != nil {
		return SettlementReport{}, fmt.Errorf("list matches: %w", err)
	}
	open, err := s.betRepo.List(ctx, bet.ListFilter{UncalculatedOnly: true})
	if err != nil {
		return SettlementReport{}, fmt.Errorf("list open bets: %w", err)
	}
	pending := make(map[string]struct{}, len(open))
	for _, item := range open {
		pending[item.MatchID] = struct{}{}
	}

	targets := make([]match.Match, 0)
	for _, m := range matches {
		if _, ok := pending[m.ID]; ok && m.HasFinalScore() {
			targets = append(targets, m)
		}
	}
	if len(targets) == 0 {
		return SettlementReport{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return SettlementReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		settledCount atomic.Int32
		betCount     atomic.Int32
		failedCount  atomic.Int32
		workers      sync.WaitGroup
	)
	for _, target := range targets {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			result, err := s.settle(ctx, target.ID, *target.HomeScore, *target.AwayScore)
			if err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "settle finished match failed", "match_id", target.ID, "error", err)
				return
			}
			settledCount.Add(1)
			betCount.Add(int32(result.BetsApplied))
		}); err != nil {
			workers.Done()
			return SettlementReport{}, fmt.Errorf("submit settlement to worker pool: %w", err)
		}
	}
	workers.Wait()

	report := SettlementReport{
		Matches: int(settledCount.Load()),
		Bets:    int(betCount.Load()),
		Failed:  int(failedCount.Load()),
	}
	s.logger.InfoContext(ctx, "settlement run finished", "matches", report.Matches, "bets", report.Bets, "failed", report.Failed)

	if report.Matches > 0 {
		if err := recalculateRankings(ctx, s.ranker); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *SettlementService) settle(ctx context.Context, matchID string, homeScore, awayScore int) (SettleMatchResult, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return SettleMatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if homeScore < 0 || awayScore < 0 {
		return SettleMatchResult{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return SettleMatchResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	bets, err := s.betRepo.List(ctx, bet.ListFilter{MatchID: matchID})
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("list match bets: %w", err)
	}
	open, scored := splitScored(bets)

	// Scored bets keep their points, so the final score is frozen once any
	// bet on the match has been scored.
	if scored > 0 && m.HasFinalScore() && (*m.HomeScore != homeScore || *m.AwayScore != awayScore) {
		return SettleMatchResult{}, fmt.Errorf("%w: match=%s is already settled %d-%d", ErrConflict, matchID, *m.HomeScore, *m.AwayScore)
	}

	result := settlement.Result{
		MatchID:   matchID,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Bets:      make([]settlement.BetResult, 0, len(open)),
	}
	for _, item := range open {
		result.Bets = append(result.Bets, settlement.BetResult{
			BetID:    item.ID,
			PlayerID: item.PlayerID,
			Points:   bet.Score(item.PredictedHomeScore, item.PredictedAwayScore, homeScore, awayScore),
		})
	}

	applied, err := s.settlementRepo.Apply(ctx, result)
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("apply settlement match=%s: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "match settled", "match_id", matchID, "home_score", homeScore, "away_score", awayScore, "bets_applied", applied)
	return SettleMatchResult{
		MatchID:     matchID,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		BetsApplied: applied,
	}, nil
}

// splitScored returns the bets still waiting for points and how many are
// already scored.
func splitScored(items []bet.Bet) ([]bet.Bet, int) {
	open := make([]bet.Bet, 0, len(items))
	for _, item := range items {
		if !item.IsCalculated {
			open = append(open, item)
		}
	}
	return open, len(items) - len(open)
}
