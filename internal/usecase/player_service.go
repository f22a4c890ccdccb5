package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/session"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

type CreatePlayerInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdatePlayerInput is a partial update; nil fields are left unchanged.
type UpdatePlayerInput struct {
	Name               *string
	Email              *string
	Password           *string
	Role               *string
	Points             *int
	CorrectPredictions *int
	TotalPredictions   *int
}

type LeaderboardEntry struct {
	Player   player.Player
	Accuracy int
}

type PlayerStats struct {
	PlayerID  string
	Name      string
	Points    int
	Correct   int
	Total     int
	Rank      int
	Accuracy  int
	CreatedAt time.Time
}

type PlayerService struct {
	playerRepo player.Repository
	ranker     player.RankingRecalculator
	sessions   session.Store
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewPlayerService(
	playerRepo player.Repository,
	ranker player.RankingRecalculator,
	sessions session.Store,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		playerRepo: playerRepo,
		ranker:     ranker,
		sessions:   sessions,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PlayerService) List(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.List")
	defer span.End()

	items, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return items, nil
}

func (s *PlayerService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Leaderboard")
	defer span.End()

	items, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]LeaderboardEntry, 0, len(items))
	for _, item := range items {
		out = append(out, LeaderboardEntry{Player: item, Accuracy: item.Accuracy()})
	}
	return out, nil
}

func (s *PlayerService) Stats(ctx context.Context, playerID string) (PlayerStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Stats")
	defer span.End()

	item, err := s.get(ctx, playerID)
	if err != nil {
		return PlayerStats{}, err
	}

	return PlayerStats{
		PlayerID:  item.ID,
		Name:      item.Name,
		Points:    item.Points,
		Correct:   item.CorrectPredictions,
		Total:     item.TotalPredictions,
		Rank:      item.RankPosition,
		Accuracy:  item.Accuracy(),
		CreatedAt: item.CreatedAt,
	}, nil
}

func (s *PlayerService) Create(ctx context.Context, input CreatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return player.Player{}, err
	}
	if strings.TrimSpace(input.Password) == "" {
		return player.Player{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	role := player.RolePlayer
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := player.ParseRole(input.Role)
		if !ok {
			return player.Player{}, fmt.Errorf("%w: role must be admin or player", ErrInvalidInput)
		}
		role = parsed
	}

	if _, exists, err := s.playerRepo.GetByEmail(ctx, email); err != nil {
		return player.Player{}, fmt.Errorf("get player by email: %w", err)
	} else if exists {
		return player.Player{}, fmt.Errorf("%w: email %s is already registered", ErrConflict, email)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return player.Player{}, err
	}
	id, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	now := s.now().UTC()
	item := player.Player{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.playerRepo.Create(ctx, item); err != nil {
		if errors.Is(err, player.ErrEmailTaken) {
			return player.Player{}, fmt.Errorf("%w: email %s is already registered", ErrConflict, email)
		}
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player created", "player_id", item.ID, "role", item.Role)
	if err := recalculateRankings(ctx, s.ranker); err != nil {
		return player.Player{}, err
	}

	return s.reload(ctx, item)
}

func (s *PlayerService) Update(ctx context.Context, playerID string, input UpdatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Update")
	defer span.End()

	current, err := s.get(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}

	item := current
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
		if item.Name == "" {
			return player.Player{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return player.Player{}, err
		}
		item.Email = email
	}
	if input.Role != nil {
		role, ok := player.ParseRole(*input.Role)
		if !ok {
			return player.Player{}, fmt.Errorf("%w: role must be admin or player", ErrInvalidInput)
		}
		item.Role = role
	}
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return player.Player{}, err
		}
		item.Password = hash
	}
	if input.Points != nil {
		item.Points = *input.Points
	}
	if input.CorrectPredictions != nil {
		item.CorrectPredictions = *input.CorrectPredictions
	}
	if input.TotalPredictions != nil {
		item.TotalPredictions = *input.TotalPredictions
	}
	if item.Points < 0 || item.CorrectPredictions < 0 || item.TotalPredictions < 0 {
		return player.Player{}, fmt.Errorf("%w: counters must not be negative", ErrInvalidInput)
	}
	if item.CorrectPredictions > item.TotalPredictions {
		return player.Player{}, fmt.Errorf("%w: correct predictions cannot exceed total predictions", ErrInvalidInput)
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.playerRepo.Update(ctx, item); err != nil {
		if errors.Is(err, player.ErrEmailTaken) {
			return player.Player{}, fmt.Errorf("%w: email %s is already registered", ErrConflict, item.Email)
		}
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}

	s.logger.InfoContext(ctx, "player updated", "player_id", item.ID)
	if item.Points != current.Points || item.CorrectPredictions != current.CorrectPredictions {
		if err := recalculateRankings(ctx, s.ranker); err != nil {
			return player.Player{}, err
		}
	}

	return s.reload(ctx, item)
}

func (s *PlayerService) Delete(ctx context.Context, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Delete")
	defer span.End()

	if _, err := s.get(ctx, playerID); err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if err := s.sessions.DeleteByPlayer(ctx, playerID); err != nil {
		s.logger.WarnContext(ctx, "revoke deleted player sessions failed", "player_id", playerID, "error", err)
	}

	s.logger.InfoContext(ctx, "player deleted", "player_id", playerID)
	return recalculateRankings(ctx, s.ranker)
}

// RecalculateRankings is the admin-triggered ranking refresh.
func (s *PlayerService) RecalculateRankings(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.RecalculateRankings")
	defer span.End()

	return recalculateRankings(ctx, s.ranker)
}

func (s *PlayerService) get(ctx context.Context, playerID string) (player.Player, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return item, nil
}

// reload picks up the rank_position written by the ranking procedure.
func (s *PlayerService) reload(ctx context.Context, fallback player.Player) (player.Player, error) {
	item, exists, err := s.playerRepo.GetByID(ctx, fallback.ID)
	if err != nil {
		return player.Player{}, fmt.Errorf("reload player: %w", err)
	}
	if !exists {
		return fallback, nil
	}
	return item, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	return email, nil
}
