package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const (
	maxPredictedScore = 99
	defaultPageSize   = 10
	maxPageSize       = 100
)

type SubmitBetInput struct {
	PlayerID      string
	MatchID       string
	PredictedHome int
	PredictedAway int
}

// BetQuery filters and pages bet listings. Tour and PlayerID are optional.
type BetQuery struct {
	PlayerID string
	Tour     *int
	Page     int
	PageSize int
}

type PlayerRef struct {
	ID    string
	Name  string
	Email string
}

// BetView is a bet joined with its match, and with its player for the
// all-bets listing.
type BetView struct {
	Bet    bet.Bet
	Match  match.Match
	Player *PlayerRef
	State  bet.State
}

type BetPage struct {
	Items           []BetView
	Total           int
	Page            int
	PageSize        int
	TotalPoints     int
	CalculatedCount int
	Tours           []int
}

type BetService struct {
	matchRepo  match.Repository
	betRepo    bet.Repository
	playerRepo player.Repository
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewBetService(
	matchRepo match.Repository,
	betRepo bet.Repository,
	playerRepo player.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *BetService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BetService{
		matchRepo:  matchRepo,
		betRepo:    betRepo,
		playerRepo: playerRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitBet creates or replaces the player's prediction for a match. Both
// gates are checked before anything is written.
func (s *BetService) SubmitBet(ctx context.Context, input SubmitBetInput) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.SubmitBet")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.PlayerID == "" {
		return bet.Bet{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return bet.Bet{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if !validPredictedScore(input.PredictedHome) || !validPredictedScore(input.PredictedAway) {
		return bet.Bet{}, fmt.Errorf("%w: predicted scores must be between 0 and %d", ErrInvalidInput, maxPredictedScore)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get match: %w", err)
	}
	if !exists || !m.IsVisible {
		return bet.Bet{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	now := s.now()
	if match.HasStarted(now, m) {
		return bet.Bet{}, fmt.Errorf("%w: match=%s", bet.ErrMatchStarted, m.ID)
	}
	if m.Status != match.StatusUpcoming {
		return bet.Bet{}, fmt.Errorf("%w: match=%s status=%s", bet.ErrMatchLocked, m.ID, m.Status)
	}

	existing, exists, err := s.betRepo.GetByPlayerAndMatch(ctx, input.PlayerID, input.MatchID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get existing bet: %w", err)
	}
	if exists && existing.IsCalculated {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s is already scored", bet.ErrMatchLocked, existing.ID)
	}

	nowUTC := now.UTC()
	item := existing
	if !exists {
		id, err := s.idGen.NewID()
		if err != nil {
			return bet.Bet{}, fmt.Errorf("generate bet id: %w", err)
		}
		item = bet.Bet{
			ID:        id,
			PlayerID:  input.PlayerID,
			MatchID:   input.MatchID,
			CreatedAt: nowUTC,
		}
	}
	item.PredictedHomeScore = input.PredictedHome
	item.PredictedAwayScore = input.PredictedAway
	item.UpdatedAt = nowUTC

	if err := s.betRepo.Upsert(ctx, item); err != nil {
		return bet.Bet{}, fmt.Errorf("upsert bet: %w", err)
	}

	s.logger.InfoContext(ctx, "bet submitted",
		"player_id", item.PlayerID,
		"match_id", item.MatchID,
		"bet_id", item.ID,
		"updated", exists,
	)
	return item, nil
}

// GetForMatch returns the player's bet for one match, if any.
func (s *BetService) GetForMatch(ctx context.Context, playerID, matchID string) (bet.Bet, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.GetForMatch")
	defer span.End()

	item, exists, err := s.betRepo.GetByPlayerAndMatch(ctx, strings.TrimSpace(playerID), strings.TrimSpace(matchID))
	if err != nil {
		return bet.Bet{}, false, fmt.Errorf("get bet: %w", err)
	}
	return item, exists, nil
}

func (s *BetService) ListForPlayer(ctx context.Context, playerID string, query BetQuery) (BetPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.ListForPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return BetPage{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	query.PlayerID = playerID
	return s.list(ctx, query, false)
}

func (s *BetService) ListAll(ctx context.Context, query BetQuery) (BetPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetService.ListAll")
	defer span.End()

	query.PlayerID = strings.TrimSpace(query.PlayerID)
	return s.list(ctx, query, true)
}

func (s *BetService) list(ctx context.Context, query BetQuery, withPlayers bool) (BetPage, error) {
	page, pageSize, err := normalizePage(query.Page, query.PageSize)
	if err != nil {
		return BetPage{}, err
	}

	bets, err := s.betRepo.List(ctx, bet.ListFilter{PlayerID: query.PlayerID})
	if err != nil {
		return BetPage{}, fmt.Errorf("list bets: %w", err)
	}
	matches, err := s.matchRepo.List(ctx, match.ListFilter{})
	if err != nil {
		return BetPage{}, fmt.Errorf("list matches: %w", err)
	}
	matchByID := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
	}

	var playerByID map[string]PlayerRef
	if withPlayers {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return BetPage{}, fmt.Errorf("list players: %w", err)
		}
		playerByID = make(map[string]PlayerRef, len(players))
		for _, p := range players {
			playerByID[p.ID] = PlayerRef{ID: p.ID, Name: p.Name, Email: p.Email}
		}
	}

	now := s.now()
	tourSet := make(map[int]struct{})
	filtered := make([]BetView, 0, len(bets))
	out := BetPage{Page: page, PageSize: pageSize}
	for _, item := range bets {
		m, ok := matchByID[item.MatchID]
		if !ok {
			continue
		}
		if m.Tour != nil {
			tourSet[*m.Tour] = struct{}{}
		}
		if query.Tour != nil && (m.Tour == nil || *m.Tour != *query.Tour) {
			continue
		}

		view := BetView{
			Bet:   item,
			Match: m,
			State: bet.StateOf(now, m, item, true),
		}
		if withPlayers {
			ref, ok := playerByID[item.PlayerID]
			if !ok {
				continue
			}
			view.Player = &ref
		}
		if item.IsCalculated {
			out.CalculatedCount++
			out.TotalPoints += item.Points()
		}
		filtered = append(filtered, view)
	}

	out.Tours = make([]int, 0, len(tourSet))
	for tour := range tourSet {
		out.Tours = append(out.Tours, tour)
	}
	sort.Ints(out.Tours)

	out.Total = len(filtered)
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	out.Items = filtered[start:end]
	return out, nil
}

func normalizePage(page, pageSize int) (int, int, error) {
	if page < 0 || pageSize < 0 {
		return 0, 0, fmt.Errorf("%w: page and page size must not be negative", ErrInvalidInput)
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}

func validPredictedScore(v int) bool {
	return v >= 0 && v <= maxPredictedScore
}
