package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

// LastResultsLimit is how many finished matches the results feed shows.
const LastResultsLimit = 10

// MatchInput is the admin form payload for create and update.
type MatchInput struct {
	HomeTeam  string
	AwayTeam  string
	MatchDate string
	MatchTime string
	League    string
	Tour      *int
	Status    string
	HomeScore *int
	AwayScore *int
	IsVisible *bool
}

type MatchService struct {
	matchRepo match.Repository
	betRepo   bet.Repository
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(matchRepo match.Repository, betRepo bet.Repository, idGen idgen.Generator, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo: matchRepo,
		betRepo:   betRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

// Now is the clock the service gates predictions with.
func (s *MatchService) Now() time.Time {
	return s.now()
}

func (s *MatchService) ListVisible(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListVisible")
	defer span.End()

	items, err := s.matchRepo.List(ctx, match.ListFilter{VisibleOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list visible matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) ListAll(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListAll")
	defer span.End()

	items, err := s.matchRepo.List(ctx, match.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) LastResults(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.LastResults")
	defer span.End()

	items, err := s.matchRepo.ListFinished(ctx, LastResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

// GetVisible is Get for public callers: hidden matches do not exist for them.
func (s *MatchService) GetVisible(ctx context.Context, matchID string) (match.Match, error) {
	item, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if !item.IsVisible {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *MatchService) Create(ctx context.Context, input MatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	item, err := buildMatch(match.Match{IsVisible: true}, input, false)
	if err != nil {
		return match.Match{}, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}
	now := s.now().UTC()
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created", "match_id", item.ID, "home_team", item.HomeTeam, "away_team", item.AwayTeam)
	return item, nil
}

func (s *MatchService) Update(ctx context.Context, matchID string, input MatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	current, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	item, err := buildMatch(current, input, true)
	if err != nil {
		return match.Match{}, err
	}
	item.UpdatedAt = s.now().UTC()

	if scoreChanged(current, item) {
		settled, err := s.hasScoredBets(ctx, current.ID)
		if err != nil {
			return match.Match{}, err
		}
		if settled {
			return match.Match{}, fmt.Errorf("%w: match=%s is settled, its score cannot change", ErrConflict, current.ID)
		}
	}

	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}

	s.logger.InfoContext(ctx, "match updated", "match_id", item.ID, "status", item.Status)
	return item, nil
}

func (s *MatchService) Delete(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	if _, err := s.Get(ctx, matchID); err != nil {
		return err
	}
	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}

	s.logger.InfoContext(ctx, "match deleted", "match_id", matchID)
	return nil
}

func (s *MatchService) hasScoredBets(ctx context.Context, matchID string) (bool, error) {
	if s.betRepo == nil {
		return false, nil
	}
	items, err := s.betRepo.List(ctx, bet.ListFilter{MatchID: matchID})
	if err != nil {
		return false, fmt.Errorf("list match bets: %w", err)
	}
	_, scored := splitScored(items)
	return scored > 0, nil
}

func scoreChanged(before, after match.Match) bool {
	return !sameScore(before.HomeScore, after.HomeScore) || !sameScore(before.AwayScore, after.AwayScore)
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// buildMatch applies the form over base and validates the result. Nothing is
// returned unless every field is valid.
func buildMatch(base match.Match, input MatchInput, editing bool) (match.Match, error) {
	var errs match.ValidationErrors

	item := base
	item.HomeTeam = strings.TrimSpace(input.HomeTeam)
	item.AwayTeam = strings.TrimSpace(input.AwayTeam)
	item.League = strings.TrimSpace(input.League)
	if item.League == "" {
		item.League = match.DefaultLeague
	}
	item.Tour = input.Tour
	item.HomeScore = input.HomeScore
	item.AwayScore = input.AwayScore
	if input.IsVisible != nil {
		item.IsVisible = *input.IsVisible
	}

	item.Status = match.StatusUpcoming
	if strings.TrimSpace(input.Status) != "" {
		item.Status = match.Status(strings.ToLower(strings.TrimSpace(input.Status)))
	}

	if err := match.ValidateDateInput(input.MatchDate); err != nil {
		errs = append(errs, match.FieldError{Field: "match_date", Message: err.Error()})
	} else {
		item.MatchDate = strings.TrimSpace(input.MatchDate)
	}

	if err := match.ValidateTimeInput(input.MatchTime, editing); err != nil {
		errs = append(errs, match.FieldError{Field: "match_time", Message: err.Error()})
	} else if normalized, err := match.NormalizeTime(input.MatchTime); err != nil {
		errs = append(errs, match.FieldError{Field: "match_time", Message: err.Error()})
	} else {
		item.MatchTime = normalized
	}

	errs = append(errs, match.Validate(item)...)
	if len(errs) > 0 {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}
	return item, nil
}

// FieldErrors extracts field-level messages from a validation failure.
func FieldErrors(err error) []match.FieldError {
	var errs match.ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
